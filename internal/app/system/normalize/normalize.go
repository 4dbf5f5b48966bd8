// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
)

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal runs of whitespace; case is kept.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Code trims a course code and uppercases it for display.
func Code(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
