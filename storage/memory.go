package storage

import (
	"context"
	"sync"
)

type entry struct {
	owner string
	key   string
}

type Memory struct {
	mu   sync.RWMutex
	data map[entry][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[entry][]byte)}
}

func (m *Memory) Namespace(owner string) KV {
	return &memoryKV{m: m, owner: owner}
}

type memoryKV struct {
	m     *Memory
	owner string
}

func (kv *memoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	kv.m.mu.RLock()
	defer kv.m.mu.RUnlock()

	v, ok := kv.m.data[entry{kv.owner, key}]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (kv *memoryKV) Set(ctx context.Context, key string, value []byte) error {
	kv.m.mu.Lock()
	defer kv.m.mu.Unlock()

	kv.m.data[entry{kv.owner, key}] = append([]byte(nil), value...)
	return nil
}

func (kv *memoryKV) Delete(ctx context.Context, key string) error {
	kv.m.mu.Lock()
	defer kv.m.mu.Unlock()

	delete(kv.m.data, entry{kv.owner, key})
	return nil
}
