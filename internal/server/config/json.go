package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "10m" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	MetricsAddr                 string         `json:"metrics_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	LogLevel                    string         `json:"log_level"`
	SecretKey                   string         `json:"secret_key"`
	AdminToken                  string         `json:"admin_token"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ResetGrantValidityDuration  timex.Duration `json:"reset_grant_validity_duration"`
	CodeTTL                     timex.Duration `json:"code_ttl"`
	CodeLength                  int            `json:"code_length"`
	MinPasswordLength           int            `json:"min_password_length"`
	SweepInterval               timex.Duration `json:"sweep_interval"`
	MailDriver                  string         `json:"mail_driver"`
	MailFrom                    string         `json:"mail_from"`
	SMTPHost                    string         `json:"smtp_host"`
	SMTPPort                    int            `json:"smtp_port"`
	SMTPUser                    string         `json:"smtp_user"`
	SMTPPassword                string         `json:"smtp_password"`
	SESRegion                   string         `json:"ses_region"`
	SESEndpoint                 string         `json:"ses_endpoint"`
	SESAccessKey                string         `json:"ses_access_key_id"`
	SESSecretKey                string         `json:"ses_secret_access_key"`
	RedisAddr                   string         `json:"redis_addr"`
	RateLimitEnabled            *bool          `json:"rate_limit_enabled"`
}

// parseJson overlays values from the file named by -c/-config. Keys absent
// from the file keep their current value. An unreadable or malformed file
// panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminToken, c.AdminToken)
	setString(&config.MailDriver, c.MailDriver)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SESRegion, c.SESRegion)
	setString(&config.SESEndpoint, c.SESEndpoint)
	setString(&config.SESAccessKey, c.SESAccessKey)
	setString(&config.SESSecretKey, c.SESSecretKey)
	setString(&config.RedisAddr, c.RedisAddr)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ResetGrantValidityDuration.Duration != 0 {
		config.ResetGrantValidityDuration = c.ResetGrantValidityDuration.Duration
	}
	if c.CodeTTL.Duration != 0 {
		config.CodeTTL = c.CodeTTL.Duration
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.CodeLength != 0 {
		config.CodeLength = c.CodeLength
	}
	if c.MinPasswordLength != 0 {
		config.MinPasswordLength = c.MinPasswordLength
	}
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.RateLimitEnabled != nil {
		config.RateLimitEnabled = *c.RateLimitEnabled
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
