// Package task 브리핑을 구성하는 외부 조회 작업을 제한된 병렬도로 실행합니다.
//
// 각 작업은 실패 시 사용할 기본값(Fallback)을 함께 가지며, RunAll은 어떤 작업이 실패하거나
// 패닉을 일으키더라도 모든 작업 이름이 정확히 한 번씩 결과(Bundle)에 포함되도록 보장합니다.
package task

import (
	"context"
	"time"
)

// component 로그에 기록되는 컴포넌트 식별자
const component = "task"

// Func 작업의 실행 함수입니다.
type Func func(ctx context.Context) (any, error)

// Task 이름, 실행 함수, 실패 시 사용할 기본값으로 구성된 작업 단위입니다.
// 이름은 하나의 작업 목록 안에서 고유해야 합니다.
type Task struct {
	Name     string
	Run      Func
	Fallback any
}

// Typed 타입이 지정된 함수로 Task를 생성합니다.
func Typed[T any](name string, fallback T, run func(ctx context.Context) (T, error)) Task {
	return Task{
		Name: name,
		Run: func(ctx context.Context) (any, error) {
			return run(ctx)
		},
		Fallback: fallback,
	}
}

// Bundle 작업 이름별 결과 값입니다. 실패한 작업은 기본값을 가집니다.
type Bundle map[string]any

// Value name에 해당하는 값을 T로 변환하여 반환합니다.
// 값이 없거나 타입이 다르면 T의 제로값과 false를 반환합니다.
func Value[T any](b Bundle, name string) (T, bool) {
	v, ok := b[name].(T)
	return v, ok
}

// Completion 작업 하나의 실행 결과입니다.
type Completion struct {
	Name     string
	Err      error
	Panicked bool
	Elapsed  time.Duration
}

// Succeeded 값이 작업 자신으로부터 얻어졌는지(기본값이 아닌지) 여부를 반환합니다.
func (c Completion) Succeeded() bool {
	return c.Err == nil
}
