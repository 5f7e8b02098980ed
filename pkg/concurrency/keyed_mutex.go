// Package concurrency 동시성 제어를 위한 보조 타입을 제공합니다.
package concurrency

import (
	"sync"
)

// KeyedMutex 키별로 독립적인 뮤텍스를 제공합니다.
//
// 서로 다른 키에 대한 작업은 병렬로 진행되고, 같은 키에 대한 작업만 직렬화됩니다.
// 각 키의 뮤텍스는 참조 카운트로 관리되어 마지막 Unlock 시점에 제거되므로
// 키가 많아져도 메모리가 누적되지 않습니다.
type KeyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyedEntry
}

type keyedEntry struct {
	mu       sync.Mutex
	refCount int
}

// NewKeyedMutex 새로운 KeyedMutex를 생성합니다.
func NewKeyedMutex[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{
		locks: make(map[K]*keyedEntry),
	}
}

// Lock 지정된 키의 잠금을 획득할 때까지 대기합니다.
func (km *KeyedMutex[K]) Lock(key K) {
	km.mu.Lock()
	e, ok := km.locks[key]
	if !ok {
		e = &keyedEntry{}
		km.locks[key] = e
	}
	e.refCount++
	km.mu.Unlock()

	e.mu.Lock()
}

// Unlock 지정된 키의 잠금을 해제합니다. 잠기지 않은 키를 해제하면 panic이 발생합니다.
func (km *KeyedMutex[K]) Unlock(key K) {
	km.mu.Lock()
	defer km.mu.Unlock()

	e, ok := km.locks[key]
	if !ok {
		panic("잠기지 않은 KeyedMutex의 잠금 해제 시도")
	}

	e.mu.Unlock()

	e.refCount--
	if e.refCount <= 0 {
		delete(km.locks, key)
	}
}
