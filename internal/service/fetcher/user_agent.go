package fetcher

import (
	"net/http"
)

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*UserAgentFetcher)(nil)

// UserAgentFetcher 요청에 User-Agent가 없을 때만 지정된 값을 주입하는 미들웨어입니다.
type UserAgentFetcher struct {
	delegate  Fetcher
	userAgent string
}

// NewUserAgentFetcher userAgent가 비어 있으면 delegate를 그대로 반환합니다.
func NewUserAgentFetcher(delegate Fetcher, userAgent string) Fetcher {
	if userAgent == "" {
		return delegate
	}

	return &UserAgentFetcher{delegate: delegate, userAgent: userAgent}
}

// Do 원본 요청을 복제하여 User-Agent를 설정한 뒤 전달합니다.
func (f *UserAgentFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return f.delegate.Do(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", f.userAgent)

	return f.delegate.Do(clone)
}
