package repository

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// KVMemory keeps values in process memory. Entries never expire on their own.
type KVMemory struct {
	items *cache.Cache
}

func NewKVMemory() *KVMemory {
	return &KVMemory{items: cache.New(cache.NoExpiration, 0)}
}

func (r *KVMemory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := r.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true, nil
}

func (r *KVMemory) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	r.items.Set(key, stored, cache.NoExpiration)
	return nil
}

func (r *KVMemory) Delete(_ context.Context, key string) error {
	r.items.Delete(key)
	return nil
}
