package cache

import (
	"context"
	"time"
)

// Entry 작업 이름을 키로 저장되는 캐시 항목입니다. Value는 작업 결과를 JSON으로 직렬화한 값입니다.
type Entry struct {
	Name      string
	CreatedAt time.Time
	Value     []byte
}

// Store 캐시 항목을 보관하는 저장소 인터페이스입니다.
//
// Get은 항목이 없으면 (Entry{}, false, nil)을 반환합니다.
// Put은 같은 이름의 기존 항목을 원자적으로 교체해야 하며, 한 항목의 쓰기가 다른 항목을 손상시켜서는 안 됩니다.
type Store interface {
	Get(ctx context.Context, name string) (Entry, bool, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, name string) error
	Close() error
}
