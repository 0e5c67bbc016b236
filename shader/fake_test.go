package shader_test

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/toolkit/shader"
)

// spirvHeader builds a header-only module with the given id bound.
func spirvHeader(bound uint32) []byte {
	return shader.CodeToBytes([]uint32{shader.Magic, 0x00010300, 0, bound, 0})
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []shader.Request
	kinds    map[shader.Kind]bool
	output   []byte
	// setting stands in for an option that changes the binary.
	setting string
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) CacheKey() string { return "fake " + b.setting }

func (b *fakeBackend) Supports(kind shader.Kind) bool {
	if b.kinds == nil {
		return true
	}
	return b.kinds[kind]
}

func (b *fakeBackend) Compile(req shader.Request) ([]byte, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.mu.Unlock()

	if strings.Contains(req.Source, "syntax error") {
		return nil, errors.Newf("%s:1: error: 'syntax' : undeclared identifier", req.Name)
	}
	if b.output != nil {
		return b.output, nil
	}
	return spirvHeader(uint32(len(req.Source))), nil
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (c *memoryCache) Get(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok, nil
}

func (c *memoryCache) Put(key string, binary []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[key] = binary
	return nil
}

type fakeDevice struct {
	next      int
	live      map[int]bool
	destroyed []int
	reject    bool
}

func (d *fakeDevice) CreateShaderModule(code []uint32) (shader.ModuleHandle, error) {
	if d.reject {
		return nil, errors.New("VK_ERROR_INVALID_SHADER_NV")
	}
	if d.live == nil {
		d.live = map[int]bool{}
	}
	d.next++
	d.live[d.next] = true
	return d.next, nil
}

func (d *fakeDevice) DestroyShaderModule(handle shader.ModuleHandle) {
	id := handle.(int)
	delete(d.live, id)
	d.destroyed = append(d.destroyed, id)
}
