package fetcher

import (
	"net/http"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
)

// CheckStatus 2xx가 아닌 응답을 상태 코드에 맞는 AppError로 변환합니다. 원인(Cause)으로 HTTPStatusError를 보존합니다.
//
//   - 401, 403: Unauthorized
//   - 404: NotFound
//   - 426: Restricted (요금제 제한)
//   - 429, 5xx: Unavailable
//   - 그 외: ExecutionFailed
func CheckStatus(resp *Response) error {
	statusErr := resp.StatusError()
	if statusErr == nil {
		return nil
	}

	return apperrors.Wrap(statusErr, StatusErrorType(resp.StatusCode), "외부 API가 실패 응답을 반환했습니다")
}

// StatusErrorType HTTP 상태 코드에 대응하는 에러 타입을 반환합니다.
func StatusErrorType(statusCode int) apperrors.ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return apperrors.Unauthorized
	case statusCode == http.StatusNotFound:
		return apperrors.NotFound
	case statusCode == http.StatusUpgradeRequired:
		return apperrors.Restricted
	case statusCode == http.StatusTooManyRequests, statusCode >= 500:
		return apperrors.Unavailable
	default:
		return apperrors.ExecutionFailed
	}
}
