package fetcher

import (
	"time"

	"golang.org/x/time/rate"
)

// Config Fetcher 체인 구성 옵션입니다.
type Config struct {
	// Timeout 요청 전체(전송부터 본문 수신까지)의 제한 시간. 0 이하이면 기본값(30초)을 사용한다.
	Timeout time.Duration

	// MaxBytes 응답 본문 최대 크기. 0이면 기본값(10MB), NoLimit이면 제한 없음.
	MaxBytes int64

	// UserAgent 요청에 User-Agent가 없을 때 주입할 값
	UserAgent string

	// Limiter 여러 Fetcher가 공유하는 속도 제한기. nil이면 제한하지 않는다.
	Limiter *rate.Limiter

	DisableLogging bool
}

// New 설정에 따라 Fetcher 체인을 조립합니다.
//
// 요청은 바깥쪽부터 Logging → RateLimit → UserAgent → MaxBytes → HTTP 순서로 통과합니다.
// 자동 재시도는 수행하지 않으며, 실패는 호출자(기본값 대체 로직)가 처리합니다.
func New(cfg Config) Fetcher {
	var f Fetcher = NewHTTPFetcher(cfg.Timeout)
	f = NewMaxBytesFetcher(f, cfg.MaxBytes)
	f = NewUserAgentFetcher(f, cfg.UserAgent)
	f = NewRateLimitFetcher(f, cfg.Limiter)

	if !cfg.DisableLogging {
		f = NewLoggingFetcher(f)
	}

	return f
}
