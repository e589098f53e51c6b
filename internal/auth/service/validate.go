package service

import (
	"fmt"
	"regexp"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// validateRegistration enforces the signup input rules: a plausible email, a
// 3-20 character password carrying a digit, a lowercase, and an uppercase
// letter, and name fields of at least two letters.
func validateRegistration(in RegisterInput) error {
	if !emailPattern.MatchString(in.Email) {
		return fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if !validPassword(in.Password) {
		return fmt.Errorf("%w: password", ErrInvalidInput)
	}
	if !validName(in.GivenName) {
		return fmt.Errorf("%w: given name", ErrInvalidInput)
	}
	if !validName(in.FamilyName) {
		return fmt.Errorf("%w: family name", ErrInvalidInput)
	}
	return nil
}

func validPassword(password string) bool {
	runes := []rune(password)
	if len(runes) < 3 || len(runes) > 20 {
		return false
	}
	var digit, lower, upper bool
	for _, r := range runes {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	return digit && lower && upper
}

func validName(name string) bool {
	letters := 0
	for _, r := range name {
		if !unicode.IsLetter(r) && r != '-' && r != ' ' && r != '\'' {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 2
}
