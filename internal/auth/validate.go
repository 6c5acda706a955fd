package auth

import (
	"regexp"

	"github.com/dinver/appcore/internal/serviceerr"
)

// emailPattern matches the shape check the backend applies: something@host.tld
// with no whitespace. Full address validation is the server's job.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

func validateCredentials(creds Credentials) error {
	if !emailPattern.MatchString(creds.Email) {
		return serviceerr.Validation("email", "malformed address")
	}
	if len(creds.Password) < minPasswordLength {
		return serviceerr.Validation("password", "shorter than 6 characters")
	}

	return nil
}

func validateRegistration(reg Registration) error {
	if err := validateCredentials(Credentials{Email: reg.Email, Password: reg.Password}); err != nil {
		return err
	}
	if reg.FirstName == "" {
		return serviceerr.Validation("firstName", "must not be empty")
	}
	if reg.LastName == "" {
		return serviceerr.Validation("lastName", "must not be empty")
	}

	return nil
}
