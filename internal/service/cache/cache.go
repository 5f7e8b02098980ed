// Package cache 작업 이름을 키로 하는 시간 제한 캐시를 제공합니다.
//
// 캐시는 각 외부 API 호출 앞에 놓이며, 유효 기간(Window) 안에 저장된 결과가 있으면
// 네트워크 호출 없이 그 값을 반환합니다. 캐시 자체의 오류는 호출자에게 전달되지 않습니다.
package cache

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/pkg/concurrency"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
)

// component 로그에 기록되는 컴포넌트 식별자
const component = "cache"

// Options 캐시 동작 옵션입니다.
type Options struct {
	Enabled bool
	Window  time.Duration

	// Clock 현재 시각을 반환하는 함수. nil이면 time.Now를 사용한다.
	Clock func() time.Time
}

// Cache Store 앞에서 유효 기간 검사와 직렬화를 담당합니다. nil *Cache는 캐시 비활성으로 동작합니다.
type Cache struct {
	store   Store
	enabled bool
	window  time.Duration
	now     func() time.Time

	locks *concurrency.KeyedMutex[string]
}

// New 새로운 Cache를 생성합니다. store가 nil이면 비활성 캐시가 됩니다.
func New(store Store, opts Options) *Cache {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Cache{
		store:   store,
		enabled: opts.Enabled && store != nil,
		window:  opts.Window,
		now:     now,
		locks:   concurrency.NewKeyedMutex[string](),
	}
}

// Enabled 캐시 사용 여부를 반환합니다.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// Close 내부 저장소를 닫습니다.
func (c *Cache) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Invalidate name에 해당하는 항목을 삭제합니다.
func (c *Cache) Invalidate(ctx context.Context, name string) error {
	if !c.Enabled() {
		return nil
	}
	return c.store.Delete(ctx, name)
}

// Fetch name에 대해 유효한 캐시 항목이 있으면 그 값을 반환하고, 없으면 fetch를 호출한 뒤 결과를 저장합니다.
//
//   - 캐시가 비활성이면 fetch를 정확히 한 번 호출하며 저장소는 사용하지 않는다.
//   - 항목이 없거나, 조회에 실패했거나, T로 디코딩할 수 없으면 미스로 처리한다.
//   - fetch의 에러는 그대로 반환하며 아무것도 저장하지 않는다.
//   - 저장 실패는 경고 로그만 남긴다.
//   - 같은 name에 대한 동시 호출은 직렬화된다.
func Fetch[T any](ctx context.Context, c *Cache, name string, fetch func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return fetch(ctx)
	}

	c.locks.Lock(name)
	defer c.locks.Unlock(name)

	if v, ok := lookup[T](ctx, c, name); ok {
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}

	c.save(ctx, name, v)

	return v, nil
}

func lookup[T any](ctx context.Context, c *Cache, name string) (T, bool) {
	var zero T

	e, found, err := c.store.Get(ctx, name)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"name":  name,
			"error": err,
		}).Warn("캐시 조회 실패: 캐시 미스로 처리합니다")
		return zero, false
	}
	if !found {
		applog.WithComponentAndFields(component, applog.Fields{"name": name}).Debug("캐시 미스")
		return zero, false
	}

	age := c.now().Sub(e.CreatedAt)
	if age >= c.window {
		applog.WithComponentAndFields(component, applog.Fields{
			"name": name,
			"age":  age.Round(time.Second).String(),
		}).Debug("캐시 만료")
		return zero, false
	}

	var v T
	if err := json.Unmarshal(e.Value, &v); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"name":  name,
			"error": apperrors.Wrap(err, apperrors.ParsingFailed, "캐시 항목이 손상되었습니다"),
		}).Warn("캐시 항목 디코딩 실패: 캐시 미스로 처리합니다")
		return zero, false
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"name": name,
		"age":  age.Round(time.Second).String(),
	}).Debug("캐시 적중")

	return v, true
}

func (c *Cache) save(ctx context.Context, name string, v any) {
	b, err := json.Marshal(v)
	if err == nil {
		err = c.store.Put(ctx, Entry{Name: name, CreatedAt: c.now(), Value: b})
	}
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"name":  name,
			"error": err,
		}).Warn("캐시 저장 실패: 결과는 정상 반환합니다")
	}
}
