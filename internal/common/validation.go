package common

import (
	"errors"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters long")
	}
	if len(password) > 100 {
		return errors.New("password is too long")
	}
	return nil
}

func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 100 {
		return errors.New("display name must be between 2 and 100 characters")
	}
	return nil
}

func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if len(title) < 3 || len(title) > 200 {
		return errors.New("title must be between 3 and 200 characters")
	}
	return nil
}

func ValidateCity(city string) error {
	if strings.TrimSpace(city) == "" {
		return errors.New("city is required")
	}
	return nil
}
