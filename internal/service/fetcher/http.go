package fetcher

import (
	"net/http"
	"time"
)

const (
	// defaultTimeout Config.Timeout이 0 이하일 때 사용하는 요청 전체 타임아웃
	defaultTimeout = 30 * time.Second

	// defaultMaxIdleConnsPerHost 같은 API 서버에 반복 호출하므로 기본값(2)보다 넉넉하게 유지한다.
	defaultMaxIdleConnsPerHost = 8
)

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher 체인의 가장 안쪽에서 실제 네트워크 요청을 수행하는 Fetcher입니다.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher 요청 전체 타임아웃을 적용한 HTTPFetcher를 생성합니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Do HTTP 요청을 전송합니다.
func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// Close 유휴 커넥션을 정리합니다.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
