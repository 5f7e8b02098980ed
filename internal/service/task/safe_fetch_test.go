package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeFetch(t *testing.T) {
	t.Parallel()

	type digest struct{ Summary string }
	fallback := digest{Summary: "Banking news unavailable"}

	tests := []struct {
		name     string
		fetch    func(context.Context) (digest, error)
		expected digest
	}{
		{
			name:     "성공하면 결과를 그대로 반환",
			fetch:    func(context.Context) (digest, error) { return digest{Summary: "rates steady"}, nil },
			expected: digest{Summary: "rates steady"},
		},
		{
			name:     "에러는 기본값으로 대체",
			fetch:    func(context.Context) (digest, error) { return digest{Summary: "partial"}, errors.New("401") },
			expected: fallback,
		},
		{
			name:     "패닉도 기본값으로 대체",
			fetch:    func(context.Context) (digest, error) { panic(errors.New("index out of range")) },
			expected: fallback,
		},
		{
			name:     "에러가 아닌 값의 패닉",
			fetch:    func(context.Context) (digest, error) { panic(42) },
			expected: fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got digest
			assert.NotPanics(t, func() {
				got = SafeFetch(context.Background(), "banking", fallback, tt.fetch)
			})
			assert.Equal(t, tt.expected, got)
		})
	}
}
