package respond

import (
	"regexp"
)

var (
	// APIキーパターン（より具体的なパターンから適用する）
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	sendgridKeyPattern  = regexp.MustCompile(`SG\.[a-zA-Z0-9_-]{8,}\.[a-zA-Z0-9_-]{8,}`)

	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]+`)

	// DSN内のパスワード
	dbPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
)

// SanitizeError masks credentials that may appear in provider or driver
// error messages before they are logged or shown.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = sendgridKeyPattern.ReplaceAllString(msg, "SG.****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
