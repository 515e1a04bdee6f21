package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactAddress keeps the first two characters of an address or postal
// code: "1234AB 10" → "12***"
func RedactAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if len(addr) <= 2 {
		return "***"
	}
	return addr[:2] + "***"
}
