// Package servicemanager names and builds the systemd shortcuts exposed for
// the brick's background services.
package servicemanager

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Verb string

const (
	Stop    Verb = "stop"
	Restart Verb = "restart"
)

// Verbs lists the operations offered per service, in catalog order.
var Verbs = []Verb{Stop, Restart}

// DefaultServices are the services worth stopping on a brick to free memory
// or CPU for a Java program.
var DefaultServices = []string{"bluetooth", "ntp", "nmbd", "brickman"}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ActionName joins verb and service in camel case, e.g. "stopNtp".
func ActionName(verb Verb, service string) string {
	return string(verb) + Capitalize(service)
}

// Description reads like "Stop the ntp service."
func Description(verb Verb, service string) string {
	return fmt.Sprintf("%s the %s service.", Capitalize(string(verb)), service)
}

// Command is the unprivileged systemctl invocation; callers wrap it in sudo.
func Command(verb Verb, service string) string {
	return strings.Join([]string{"systemctl", string(verb), service}, " ")
}
