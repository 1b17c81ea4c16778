package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// Memory is an in-process cache with per-entry expiry.
type Memory struct {
	c *gocache.Cache
}

func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Memory{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *Memory) Get(_ context.Context, key string) (*entity.ExtractionResult, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, common.ErrCacheMiss
	}
	res, ok := v.(*entity.ExtractionResult)
	if !ok {
		return nil, common.ErrCacheMiss
	}
	return res, nil
}

// Set stores res; a zero ttl uses the default expiry.
func (m *Memory) Set(_ context.Context, key string, res *entity.ExtractionResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, res, ttl)
	return nil
}

func (m *Memory) Len() int {
	return m.c.ItemCount()
}
