package fetcher

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

var (
	// sensitiveExactKeys 대소문자 구분 없이 전체 문자열이 일치할 때만 마스킹하는 쿼리 파라미터 키 목록입니다.
	// "key"를 부분 일치로 검사하면 "monkey" 같은 무해한 키까지 마스킹되므로 정확히 일치하는 경우만 처리한다.
	sensitiveExactKeys = []string{
		"token", "auth", "key", "secret", "password",
		"apikey", "api_key", "access_token", "client_secret",
	}

	// sensitiveSuffixes 특정 접미사로 끝나면 마스킹하는 쿼리 파라미터 키 목록입니다.
	sensitiveSuffixes = []string{"_token", "_secret", "_key"}

	// sensitiveHeaders 로그와 에러에서 값을 가리는 헤더 목록입니다.
	sensitiveHeaders = []string{"Authorization", "X-Api-Key", "Cookie", "Set-Cookie"}
)

// RedactURL URL에서 사용자 인증 정보와 API 키 등 민감한 쿼리 값을 "xxxxx"로 마스킹한 문자열을 반환합니다.
// 원본 URL은 변경하지 않습니다.
//
//	https://newsapi.org/v2/everything?q=Seattle&apiKey=abc → https://newsapi.org/v2/everything?apiKey=xxxxx&q=Seattle
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	ru := *u
	if u.User != nil {
		if _, has := u.User.Password(); has {
			ru.User = url.UserPassword(u.User.Username(), "xxxxx")
		} else if u.User.Username() != "" {
			ru.User = url.User("xxxxx")
		}
	}

	if u.RawQuery != "" {
		query := ru.Query()
		for key := range query {
			if isSensitiveKey(key) {
				query.Set(key, "xxxxx")
			}
		}
		ru.RawQuery = query.Encode()
	}

	return ru.String()
}

// redactHeaders 민감한 헤더 값을 "***"로 바꾼 복사본을 반환합니다.
func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	masked := h.Clone()
	for _, key := range sensitiveHeaders {
		if masked.Get(key) != "" {
			masked.Set(key, "***")
		}
	}

	return masked
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	if slices.Contains(sensitiveExactKeys, lowerKey) {
		return true
	}
	for _, suffix := range sensitiveSuffixes {
		if strings.HasSuffix(lowerKey, suffix) {
			return true
		}
	}

	return false
}
