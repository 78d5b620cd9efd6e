package auth

import (
	"fmt"
	"strings"
)

var weakPasswordList = []string{
	"admin", "password", "123456", "secret", "admin123", "password123",
	"123456789", "12345678", "qwerty", "abc123", "letmein", "welcome",
	"monkey", "1234567890", "password1", "admin1", "test", "test123",
	"default", "root", "newsletter",
}

var keyboardPatterns = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm", "qwerty", "asdfgh", "zxcvb"}

const minPasswordLength = 12

// ValidateAdminCredentials rejects an unset or weak admin account. The
// server refuses to start when it fails.
func ValidateAdminCredentials(user, pass string) error {
	const prefix = "admin credentials validation failed"
	switch {
	case user == "":
		return fmt.Errorf("%s: ADMIN_USER must not be empty", prefix)
	case pass == "":
		return fmt.Errorf("%s: ADMIN_USER_PASSWORD must not be empty", prefix)
	case len(pass) < minPasswordLength:
		return fmt.Errorf("%s: ADMIN_USER_PASSWORD must be at least %d characters (current length: %d)", prefix, minPasswordLength, len(pass))
	case isRepeatedChar(pass) || isDigitSequence(pass):
		return fmt.Errorf("%s: ADMIN_USER_PASSWORD must not be a simple numeric pattern", prefix)
	case isKeyboardPattern(pass):
		return fmt.Errorf("%s: ADMIN_USER_PASSWORD must not be a keyboard pattern", prefix)
	}

	lower := strings.ToLower(pass)
	for _, weak := range weakPasswordList {
		if lower == weak {
			return fmt.Errorf("%s: ADMIN_USER_PASSWORD must not be a weak password", prefix)
		}
		if strings.HasPrefix(lower, weak) && len(pass) < minPasswordLength+5 {
			return fmt.Errorf("%s: ADMIN_USER_PASSWORD must not be based on common weak passwords", prefix)
		}
	}
	return nil
}

func isRepeatedChar(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}

// isDigitSequence matches ascending or descending digit runs such as
// "123456789012" or "987654321098".
func isDigitSequence(s string) bool {
	asc, desc := true, true
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		if i == 0 {
			continue
		}
		diff := int(s[i]) - int(s[i-1])
		if diff != 1 && diff != -9 {
			asc = false
		}
		if diff != -1 && diff != 9 {
			desc = false
		}
	}
	return asc || desc
}

func isKeyboardPattern(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range keyboardPatterns {
		if strings.Contains(lower, p) || strings.Contains(lower, reverse(p)) {
			return true
		}
	}
	return false
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
