package task

import (
	"context"
	"fmt"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
)

// SafeFetch fetch를 호출하고, 에러나 패닉이 발생하면 경고 로그를 남긴 뒤 fallback을 그대로 반환합니다.
// 성공하면 결과를 그대로 반환합니다. 에러를 반환하거나 패닉을 전파하지 않습니다.
func SafeFetch[T any](ctx context.Context, name string, fallback T, fetch func(context.Context) (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			logFallback(name, newPanicError(r))
			result = fallback
		}
	}()

	v, err := fetch(ctx)
	if err != nil {
		logFallback(name, err)
		return fallback
	}

	return v
}

func logFallback(name string, err error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"task":       name,
		"error":      err,
		"error_type": apperrors.UnderlyingType(err).String(),
	}).Warn("외부 조회 실패: 기본값으로 대체합니다")
}

func newPanicError(r any) error {
	if err, ok := r.(error); ok {
		return apperrors.Wrap(err, apperrors.Internal, "작업 실행 도중 패닉이 발생했습니다")
	}
	return apperrors.New(apperrors.Internal, fmt.Sprintf("작업 실행 도중 패닉이 발생했습니다: %v", r))
}
