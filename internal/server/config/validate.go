package config

import (
	"errors"
	"fmt"
)

// MaxCodeLength keeps 10^length inside int64.
const MaxCodeLength = 18

// MaxPasswordBytes is the longest password bcrypt takes into account.
const MaxPasswordBytes = 72

// Validate rejects settings the services cannot run with. All problems are
// reported at once.
func (c *Config) Validate() error {
	var errs []error

	if c.CodeLength < 1 || c.CodeLength > MaxCodeLength {
		errs = append(errs, fmt.Errorf("code length must be between 1 and %d, got %d", MaxCodeLength, c.CodeLength))
	}
	if c.CodeTTL <= 0 {
		errs = append(errs, fmt.Errorf("code ttl must be positive, got %s", c.CodeTTL))
	}
	if c.MinPasswordLength < 1 || c.MinPasswordLength > MaxPasswordBytes {
		errs = append(errs, fmt.Errorf("min password length must be between 1 and %d, got %d", MaxPasswordBytes, c.MinPasswordLength))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("access token ttl must be positive, got %s", c.AccessTokenValidityDuration))
	}
	if c.ResetGrantValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("reset grant ttl must be positive, got %s", c.ResetGrantValidityDuration))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must be set"))
	}

	return errors.Join(errs...)
}
