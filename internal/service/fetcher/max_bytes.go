package fetcher

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
)

const (
	// defaultMaxBytes 응답 본문의 기본 크기 제한값입니다 (10MB).
	defaultMaxBytes = 10 * 1024 * 1024

	// NoLimit 응답 본문에 대한 크기 제한을 적용하지 않음을 나타내는 특수 상수입니다.
	NoLimit = -1
)

// newErrBodyTooLarge 응답 본문이 제한을 초과했을 때의 에러를 생성합니다.
func newErrBodyTooLarge(limit int64) error {
	return apperrors.New(apperrors.ExecutionFailed, fmt.Sprintf("응답 본문 크기가 제한(%d 바이트)을 초과했습니다", limit))
}

type maxBytesReader struct {
	rc    io.ReadCloser
	limit int64
}

func (r *maxBytesReader) Read(p []byte) (n int, err error) {
	n, err = r.rc.Read(p)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return n, newErrBodyTooLarge(r.limit)
		}
	}

	return n, err
}

func (r *maxBytesReader) Close() error {
	return r.rc.Close()
}

// MaxBytesFetcher HTTP 응답 본문의 크기를 제한하는 미들웨어입니다.
// Content-Length로 1차 차단하고, 실제 읽기 시점에 http.MaxBytesReader로 다시 제한합니다.
type MaxBytesFetcher struct {
	delegate Fetcher
	limit    int64
}

// NewMaxBytesFetcher limit이 NoLimit이면 delegate를 그대로 반환하고, 0 이하이면 기본값을 적용합니다.
func NewMaxBytesFetcher(delegate Fetcher, limit int64) Fetcher {
	if limit == NoLimit {
		return delegate
	}
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	return &MaxBytesFetcher{delegate: delegate, limit: limit}
}

// Do HTTP 요청을 수행하고, 응답 본문에 크기 제한을 적용합니다.
func (f *MaxBytesFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, err
	}

	if resp.ContentLength > f.limit {
		drainAndCloseBody(resp.Body)
		return nil, newErrBodyTooLarge(f.limit)
	}

	resp.Body = &maxBytesReader{
		rc:    http.MaxBytesReader(nil, resp.Body, f.limit),
		limit: f.limit,
	}

	return resp, nil
}
