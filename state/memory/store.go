/*
Package memory implements in-memory state.Store.

Writers are serialized by a mutex held for the whole Update, writes are
staged in an overlay which is applied only when the update function succeeds.
*/
package memory

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/carbonmarket/carbon-controller-go/state"
)

var ErrClosed = errors.New("store is closed")

type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ state.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) View(ctx context.Context, fn func(tx state.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(&tx{base: s.data})
}

func (s *Store) Update(ctx context.Context, fn func(tx state.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	t := &tx{base: s.data, writes: make(map[string][]byte), writable: true}
	if err := fn(t); err != nil {
		return err
	}
	for k, v := range t.writes {
		if v == nil {
			delete(s.data, k)
		} else {
			s.data[k] = v
		}
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of keys in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

type tx struct {
	base     map[string][]byte
	writes   map[string][]byte // nil value marks deleted key
	writable bool
}

func (t *tx) Get(key []byte) ([]byte, error) {
	if v, ok := t.writes[string(key)]; ok {
		return bytes.Clone(v), nil
	}
	if v, ok := t.base[string(key)]; ok {
		return bytes.Clone(v), nil
	}
	return nil, nil
}

func (t *tx) Set(key, value []byte) error {
	if !t.writable {
		return state.ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}
	t.writes[string(key)] = bytes.Clone(value)
	return nil
}

func (t *tx) Delete(key []byte) error {
	if !t.writable {
		return state.ErrReadOnly
	}
	t.writes[string(key)] = nil
	return nil
}

func (t *tx) Scan(prefix []byte, fn func(key, value []byte) error) error {
	keys := make(map[string]struct{})
	for k := range t.base {
		if strings.HasPrefix(k, string(prefix)) {
			keys[k] = struct{}{}
		}
	}
	for k, v := range t.writes {
		if !strings.HasPrefix(k, string(prefix)) {
			continue
		}
		if v == nil {
			delete(keys, k)
		} else {
			keys[k] = struct{}{}
		}
	}
	for _, k := range slices.Sorted(maps.Keys(keys)) {
		v, _ := t.Get([]byte(k))
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}
