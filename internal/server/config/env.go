package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays variables prefixed with GOPHAUTH_. Unset variables leave
// the field alone; a malformed value panics like a bad flag would.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: "GOPHAUTH_"}); err != nil {
		panic(err)
	}
}
