package api

import (
	"time"

	appmiddleware "github.com/darkkaiser/morning-brief/internal/service/api/middleware"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const (
	defaultReadTimeout       = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 2 * time.Minute
	defaultIdleTimeout       = 60 * time.Second

	// defaultRequestTimeout 브리핑 생성은 외부 API를 여러 번 호출하므로 요청 타임아웃을 넉넉하게 둔다.
	defaultRequestTimeout = 90 * time.Second

	// defaultMaxBodySize 미리보기 서버는 본문을 받지 않으므로 작게 제한한다.
	defaultMaxBodySize = "64K"

	// 요청마다 외부 API 호출이 발생하므로 IP별 요청 수를 제한한다.
	defaultRateLimitPerSecond = 2
	defaultRateLimitBurst     = 5
)

// HTTPServerConfig HTTP 서버 생성에 필요한 설정을 정의합니다.
type HTTPServerConfig struct {
	// Debug Echo 프레임워크의 디버그 모드 활성화 여부
	Debug bool

	// RequestTimeout 각 HTTP 요청의 최대 처리 시간. 0이면 기본값(90초)을 사용합니다.
	RequestTimeout time.Duration
}

// NewHTTPServer 미들웨어 체인이 설정된 Echo 인스턴스를 생성합니다. 라우트는 포함되지 않습니다.
//
// 미들웨어 적용 순서:
//  1. PanicRecovery - 이후 미들웨어에서 발생한 panic까지 복구
//  2. RequestID - 로그에 request_id를 남기기 위해 로깅보다 먼저 적용
//  3. Server 헤더 제거
//  4. HTTPLogger - RateLimit/Timeout으로 거부된 요청도 기록
//  5. RateLimiter - IP별 요청 제한 (429)
//  6. BodyLimit
//  7. Timeout (503)
//  8. Secure - 보안 헤더
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.WriteTimeout = defaultWriteTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}
	e.HTTPErrorHandler = ErrorHandler

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	e.Use(appmiddleware.HTTPLogger())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(defaultRateLimitPerSecond),
		Burst: defaultRateLimitBurst,
	})))
	e.Use(middleware.BodyLimit(defaultMaxBodySize))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
	}))
	e.Use(middleware.Secure())

	return e
}
