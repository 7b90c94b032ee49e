package translate

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// modelCache memoizes loaded models per language. Concurrent misses for the
// same language share a single load; failed loads are not cached.
type modelCache struct {
	mu     sync.RWMutex
	models map[string]Model
	group  singleflight.Group
}

func newModelCache() *modelCache {
	return &modelCache{models: make(map[string]Model)}
}

func (c *modelCache) lookup(lang string) (Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[lang]
	return m, ok
}

// get returns the cached model or runs load. loaded is true only for the
// caller whose load actually populated the cache.
func (c *modelCache) get(ctx context.Context, lang string, load func(context.Context) (Model, error)) (m Model, loaded bool, err error) {
	if m, ok := c.lookup(lang); ok {
		return m, false, nil
	}

	ch := c.group.DoChan(lang, func() (interface{}, error) {
		if m, ok := c.lookup(lang); ok {
			return m, nil
		}
		m, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.models[lang] = m
		c.mu.Unlock()
		loaded = true
		return m, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(Model), loaded, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (c *modelCache) languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.models))
	for k := range c.models {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
