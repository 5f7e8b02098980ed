package fetcher

import (
	"net/http"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"golang.org/x/time/rate"
)

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*RateLimitFetcher)(nil)

// RateLimitFetcher 공유 토큰 버킷으로 외부 API 호출 빈도를 제한하는 미들웨어입니다.
// 여러 작업이 동시에 실행되더라도 같은 limiter를 사용하면 전체 호출 속도가 제한됩니다.
type RateLimitFetcher struct {
	delegate Fetcher
	limiter  *rate.Limiter
}

// NewRateLimitFetcher limiter가 nil이면 delegate를 그대로 반환합니다.
func NewRateLimitFetcher(delegate Fetcher, limiter *rate.Limiter) Fetcher {
	if limiter == nil {
		return delegate
	}

	return &RateLimitFetcher{delegate: delegate, limiter: limiter}
}

// NewLimiter 초당 요청 수(rps)가 0 이하이면 nil(제한 없음)을 반환합니다.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Do 토큰을 얻을 때까지 대기한 뒤 요청을 전달합니다. 대기 중 컨텍스트가 끝나면 Timeout 에러를 반환합니다.
func (f *RateLimitFetcher) Do(req *http.Request) (*http.Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Timeout, "요청 속도 제한 대기 중 컨텍스트가 종료되었습니다")
	}

	return f.delegate.Do(req)
}
