package cache

import (
	"context"
	"slices"
	"sync"
)

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Store = (*MemoryStore)(nil)

// MemoryStore 프로세스 메모리에 항목을 보관하는 Store 구현체입니다.
// 미리보기 서버처럼 프로세스가 오래 유지되는 경우나 테스트에서 사용합니다.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore 비어 있는 MemoryStore를 생성합니다.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, name string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return Entry{}, false, nil
	}

	e.Value = slices.Clone(e.Value)
	return e, true, nil
}

func (s *MemoryStore) Put(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Value = slices.Clone(e.Value)
	s.entries[e.Name] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, name)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
