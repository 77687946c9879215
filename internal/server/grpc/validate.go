package grpc

import (
	"fmt"
	"net/mail"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

const (
	maxEmailLength = 254
	// bcrypt ignores anything past 72 bytes.
	maxPasswordBytes = config.MaxPasswordBytes
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	if len(email) > maxEmailLength {
		return invalid("email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email is not a valid address")
	}
	return nil
}

func validatePassword(field, password string) error {
	if password == "" {
		return invalid("%s is required", field)
	}
	if len(password) > maxPasswordBytes {
		return invalid("%s must be at most %d bytes", field, maxPasswordBytes)
	}
	return nil
}

func validateCode(code string, length int) error {
	if len(code) != length {
		return invalid("code must be exactly %d digits", length)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return invalid("code must be exactly %d digits", length)
		}
	}
	return nil
}

func required(field, value string) error {
	if value == "" {
		return invalid("%s is required", field)
	}
	return nil
}
