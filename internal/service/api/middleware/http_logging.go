// Package middleware 미리보기 서버에서 사용하는 Echo 미들웨어를 제공합니다.
package middleware

import (
	"net/url"
	"strconv"
	"time"

	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/labstack/echo/v4"
)

const (
	component     = "api.middleware"
	componentEcho = "api.echo"
)

// sensitiveQueryParams 로그에 기록하기 전에 값을 마스킹하는 쿼리 파라미터 목록입니다.
var sensitiveQueryParams = []string{
	"api_key",
	"apikey",
	"key",
	"token",
	"password",
	"secret",
}

// HTTPLogger HTTP 요청/응답을 구조화된 로그로 기록하는 미들웨어를 반환합니다.
// 핸들러가 반환한 에러는 이 미들웨어에서 c.Error로 처리하므로 기록되는 상태 코드는 최종 응답 코드입니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			// panic이 발생해도 기록되도록 defer로 처리한다.
			defer func() {
				latency := time.Since(start)

				path := req.URL.Path
				if path == "" {
					path = "/"
				}

				applog.WithComponentAndFields(component, applog.Fields{
					"method":        req.Method,
					"path":          path,
					"uri":           maskSensitiveQueryParams(req.RequestURI),
					"remote_ip":     c.RealIP(),
					"user_agent":    req.UserAgent(),
					"status":        res.Status,
					"bytes_out":     strconv.FormatInt(res.Size, 10),
					"latency":       strconv.FormatInt(latency.Microseconds(), 10),
					"latency_human": latency.String(),
					"request_id":    res.Header().Get(echo.HeaderXRequestID),
				}).Info("HTTP 요청")
			}()

			if err := next(c); err != nil {
				c.Error(err)
			}

			return nil
		}
	}
}

// maskSensitiveQueryParams URI의 민감한 쿼리 파라미터 값을 마스킹합니다. 파싱에 실패하면 원본을 반환합니다.
//
//	입력: "/brief.json?token=secret123&city=Seattle"
//	출력: "/brief.json?city=Seattle&token=secr%2A%2A%2A"
func maskSensitiveQueryParams(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	q := u.Query()
	masked := false
	for _, param := range sensitiveQueryParams {
		if q.Has(param) {
			q.Set(param, applog.MaskSensitiveData(q.Get(param)))
			masked = true
		}
	}

	if !masked {
		return uri
	}

	u.RawQuery = q.Encode()
	return u.String()
}
