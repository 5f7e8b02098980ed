package fetcher

import (
	"fmt"
	"net/http"
	"unicode/utf8"
)

// BodySnippetLength 에러 메시지에 포함하는 응답 본문의 최대 길이(문자 수)
const BodySnippetLength = 200

// HTTPStatusError 2xx가 아닌 HTTP 응답을 나타내는 에러입니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string
	Header      http.Header
	BodySnippet string
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += " URL: " + e.URL
	}
	if e.BodySnippet != "" {
		msg += ", Body: " + e.BodySnippet
	}
	return msg
}

// Truncate 문자열을 최대 n개의 문자(rune)로 자릅니다.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)
	return string(runes[:n])
}
