package llmhttp

import (
	"fmt"
	"regexp"
)

// MaxLoggedResponseLength caps how much of a model reply may be echoed to
// logs; replies regularly contain user source code.
const MaxLoggedResponseLength = 200

// TruncateForLogging shortens a response string for safe log output.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] +
		fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var urlSecretParams = []string{"key", "apiKey", "api_key", "token", "access_token"}

// RedactURLSecrets redacts credential-bearing query parameters from URLs
// that surface in error messages, so a failing request never leaks its key.
//
//	input:  "https://api.example.com/v1?key=secret123&foo=bar"
//	output: "https://api.example.com/v1?key=[REDACTED]&foo=bar"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}
	result := text
	for _, param := range urlSecretParams {
		re := regexp.MustCompile(param + `=([^&"\s]+)`)
		result = re.ReplaceAllString(result, param+"=[REDACTED]")
	}
	return result
}
