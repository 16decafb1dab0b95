// Package validation provides input validation helpers for the fraud API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB).
const MaxRequestSize = 1 << 20

// MaxStringLength is the maximum length for free-form string fields.
const MaxStringLength = 256

var (
	// currencyRegex validates ISO 4217 alpha codes.
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	// countryRegex validates ISO 3166-1 alpha-2 codes.
	countryRegex = regexp.MustCompile(`^[A-Z]{2}$`)
)

// RequestSizeMiddleware limits request body size.
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidCurrency checks if a string is a 3-letter uppercase currency code.
func IsValidCurrency(code string) bool {
	return currencyRegex.MatchString(code)
}

// IsValidCountryCode checks if a string is a 2-letter uppercase country code.
// Empty is valid: location is an optional signal.
func IsValidCountryCode(code string) bool {
	return code == "" || countryRegex.MatchString(code)
}

// SanitizeString trims, bounds, and strips null bytes from a free-form field.
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.ReplaceAll(s, "\x00", "")
}
