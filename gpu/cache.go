package gpu

import (
	"container/list"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// ShaderCache compiles and caches Kage shader modules by class identity
// (spec.md §4.9 "pipeline/shader module caches keyed by shader class
// identity", §4.10 "the pass's shader module is compiled lazily and cached
// per device").
type ShaderCache struct {
	mu    sync.Mutex
	byKey map[string]*ebiten.Shader
}

func newShaderCache() *ShaderCache {
	return &ShaderCache{byKey: make(map[string]*ebiten.Shader)}
}

// GetOrCompile returns the cached shader for key, compiling src via
// ebiten.NewShader on first use.
func (c *ShaderCache) GetOrCompile(key string, src []byte) (*ebiten.Shader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.byKey[key]; ok {
		return s, nil
	}
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, err
	}
	c.byKey[key] = s
	return s, nil
}

func (c *ShaderCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]*ebiten.Shader)
}

// Pipeline bundles a shader with the draw options it is invoked with. Ebiten
// has no separate pipeline-object concept; a Pipeline stands in for the
// (shader, blend-mode, topology) tuple a real GPU pipeline object would fix.
type Pipeline struct {
	Shader *ebiten.Shader
	Blend  ebiten.Blend
}

// PipelineCache caches Pipeline values by shader class identity, same
// keying scheme as ShaderCache (spec.md §4.9).
type PipelineCache struct {
	mu    sync.Mutex
	byKey map[string]*Pipeline
}

func newPipelineCache() *PipelineCache {
	return &PipelineCache{byKey: make(map[string]*Pipeline)}
}

// GetOrCreate returns the cached pipeline for key, calling build on a miss.
func (c *PipelineCache) GetOrCreate(key string, build func() (*Pipeline, error)) (*Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.byKey[key]; ok {
		return p, nil
	}
	p, err := build()
	if err != nil {
		return nil, err
	}
	c.byKey[key] = p
	return p, nil
}

func (c *PipelineCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]*Pipeline)
}

// BindGroupCache is an LRU cache bounded at capacity entries, keyed by
// composite strings like "textureId_bufferId" (spec.md §4.9).
type BindGroupCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type bindGroupEntry struct {
	key   string
	value any
}

func newBindGroupCache(capacity int) *BindGroupCache {
	return &BindGroupCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached value for key, promoting it to most-recently-used.
func (c *BindGroupCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*bindGroupEntry).value, true
}

// Put inserts or updates key's value, evicting the least-recently-used
// entry if the cache is at capacity.
func (c *BindGroupCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*bindGroupEntry).value = value
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&bindGroupEntry{key: key, value: value})
	c.items[key] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*bindGroupEntry).key)
		}
	}
}

// Len returns the current number of cached entries.
func (c *BindGroupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *BindGroupCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll = list.New()
	c.items = make(map[string]*list.Element)
}
