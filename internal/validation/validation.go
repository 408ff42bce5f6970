// Package validation содержит функции валидации входных данных.
package validation

import (
	"regexp"
	"unicode"
)

var (
	emailRe = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phoneRe = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// IsValidZipCode проверяет формат zip-кода США: 5 цифр либо ZIP+4.
func IsValidZipCode(zip string) bool {
	if len(zip) != 5 && len(zip) != 10 {
		return false
	}

	for i, ch := range zip {
		if i == 5 {
			if ch != '-' {
				return false
			}
			continue
		}
		if !unicode.IsDigit(ch) {
			return false
		}
	}

	return true
}

// IsValidEmail проверяет формат адреса электронной почты.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailRe.MatchString(email)
}

// IsValidPhone проверяет формат телефонного номера: цифры, пробелы, дефисы,
// скобки и необязательный ведущий плюс, не менее семи цифр.
func IsValidPhone(phone string) bool {
	if !phoneRe.MatchString(phone) {
		return false
	}

	digits := 0
	for _, ch := range phone {
		if unicode.IsDigit(ch) {
			digits++
		}
	}
	return digits >= 7
}
