// Package fetcher 외부 API 호출에 사용하는 HTTP 클라이언트 체인을 제공합니다.
//
// 각 기능(타임아웃, 응답 크기 제한, User-Agent, 속도 제한, 로깅)은 Fetcher 인터페이스를 구현하는
// 데코레이터로 분리되어 있으며, New 함수가 설정에 따라 체인을 조립합니다.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
)

// component 로그에 기록되는 컴포넌트 식별자
const component = "fetcher"

// Fetcher HTTP 요청을 전송하는 최소 인터페이스입니다. *http.Client와 호환됩니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response 본문을 모두 읽은 HTTP 응답입니다.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	URL        string // 민감 정보가 마스킹된 요청 URL
	Body       []byte
}

// OK 2xx 응답 여부를 반환합니다.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusError 2xx가 아닌 응답을 HTTPStatusError로 변환합니다. 2xx 응답이면 nil을 반환합니다.
func (r *Response) StatusError() *HTTPStatusError {
	if r.OK() {
		return nil
	}

	return &HTTPStatusError{
		StatusCode:  r.StatusCode,
		Status:      r.Status,
		URL:         r.URL,
		Header:      redactHeaders(r.Header),
		BodySnippet: Truncate(string(r.Body), BodySnippetLength),
	}
}

// NewRequest 쿼리 파라미터와 JSON 본문을 포함한 요청을 생성합니다.
// body가 nil이 아니면 JSON으로 직렬화하고 Content-Type을 설정합니다.
func NewRequest(ctx context.Context, method, rawURL string, query url.Values, header http.Header, body any) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "요청 URL 형식이 올바르지 않습니다")
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.Internal, "요청 본문 직렬화에 실패했습니다")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "HTTP 요청 생성에 실패했습니다")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// ReadAll 요청을 전송하고 응답 본문을 모두 읽어 반환합니다.
// 상태 코드는 검사하지 않으므로 호출자가 Response.StatusError로 판단합니다.
// 전송 계층 에러는 Timeout, Unavailable 등 AppError로 분류되어 반환됩니다.
func ReadAll(f Fetcher, req *http.Request) (*Response, error) {
	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, classifyTransportError(err, req)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err, req)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		URL:        RedactURL(req.URL),
		Body:       body,
	}, nil
}

func classifyTransportError(err error, req *http.Request) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	target := RedactURL(req.URL)

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return apperrors.Wrapf(err, apperrors.Timeout, "HTTP 요청 시간이 초과되었습니다 (%s)", target)
	case errors.Is(err, context.Canceled):
		return apperrors.Wrapf(err, apperrors.Unavailable, "HTTP 요청이 취소되었습니다 (%s)", target)
	default:
		return apperrors.Wrapf(err, apperrors.System, "HTTP 요청 전송에 실패했습니다 (%s)", target)
	}
}
