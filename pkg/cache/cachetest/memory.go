// Package cachetest provides an in-memory cache.Cache for tests.
package cachetest

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"yamdb-backend/pkg/cache"
)

// Memory stores JSON-encoded values like the redis implementation does, so
// tests observe the same encode/decode behavior. TTLs are ignored.
type Memory struct {
	mu      sync.Mutex
	values  map[string][]byte
	counter map[string]int64
	Err     error
}

var _ cache.Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{values: map[string][]byte{}, counter: map[string]int64{}}
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	raw, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *Memory) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		delete(m.counter, k)
	}
	return m.Err
}

func (m *Memory) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.values {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.values, k)
		}
	}
	return m.Err
}

func (m *Memory) Ping(context.Context) error { return m.Err }

func (m *Memory) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	m.counter[key]++
	return m.counter[key], nil
}

func (m *Memory) Expire(context.Context, string, time.Duration) error { return m.Err }

// Keys reports how many values are stored.
func (m *Memory) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// Counter returns the current value of a counter key.
func (m *Memory) Counter(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counter[key]
}
