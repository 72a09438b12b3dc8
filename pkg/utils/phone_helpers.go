package utils

import (
	"regexp"
)

var nonDigitRegexp = regexp.MustCompile(`\D`)

// NormalizePhoneNumber оставляет в номере только цифры.
// Если цифр меньше 9, считаем что это не телефон и возвращаем пустую строку.
func NormalizePhoneNumber(phone string) string {
	digitsOnly := nonDigitRegexp.ReplaceAllString(phone, "")
	if len(digitsOnly) < 9 {
		return ""
	}
	return digitsOnly
}
