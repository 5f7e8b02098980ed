package api

import (
	"errors"
	"net/http"

	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/labstack/echo/v4"
)

const componentErrorHandler = "api.error_handler"

// ErrorResponse 에러 응답 본문입니다.
type ErrorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// ErrorHandler Echo의 전역 에러 핸들러입니다. 모든 에러를 ErrorResponse JSON으로 변환합니다.
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "내부 서버 오류가 발생했습니다"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}
	if code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
		message = "요청한 리소스를 찾을 수 없습니다"
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(componentErrorHandler, fields).Error("HTTP 5xx 서버 오류")
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(componentErrorHandler, fields).Warn("HTTP 4xx 클라이언트 오류")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, ErrorResponse{ResultCode: code, Message: message})
}
