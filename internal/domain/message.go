package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const staticGreeting = "Olá, tudo bem?"

// FirstName extracts the first whitespace-separated token of a display name
// and capitalizes it.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}

	first := strings.ToLower(fields[0])
	runes := []rune(first)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Greeting builds the outbound message for a recipient. Falls back to the
// static greeting when the display name yields no usable first name.
func Greeting(name string) string {
	first := FirstName(name)
	if first == "" {
		return staticGreeting
	}
	return fmt.Sprintf("Olá %s, tudo bem?", first)
}
