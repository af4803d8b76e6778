package utils

import "strings"

// FullName joins first and last name, tolerating either being empty.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
