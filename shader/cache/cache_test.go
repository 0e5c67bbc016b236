package cache_test

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vkngwrapper/toolkit/shader/cache"
)

func TestKeyIsStableAndSeparatesParts(t *testing.T) {
	if cache.Key("a", "b") != cache.Key("a", "b") {
		t.Error("key is not deterministic")
	}
	if cache.Key("ab", "c") == cache.Key("a", "bc") {
		t.Error("part boundaries do not affect the key")
	}
	if len(cache.Key()) != 64 {
		t.Errorf("key %q is not a sha256 hex digest", cache.Key())
	}
}

func TestPutGet(t *testing.T) {
	dir, err := cache.Open(filepath.Join(t.TempDir(), "shaders"))
	if err != nil {
		t.Fatal(err)
	}

	key := cache.Key("glslc", "vert", "main", "true", "void main(){}")
	if _, found, err := dir.Get(key); err != nil || found {
		t.Fatalf("empty cache Get = %v, %v", found, err)
	}

	binary := bytes.Repeat([]byte{0x03, 0x02, 0x23, 0x07}, 64)
	if err := dir.Put(key, binary); err != nil {
		t.Fatal(err)
	}

	got, found, err := dir.Get(key)
	if err != nil || !found {
		t.Fatalf("Get = %v, %v", found, err)
	}
	if !bytes.Equal(got, binary) {
		t.Error("cached binary differs")
	}
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	root := t.TempDir()
	dir, err := cache.Open(root)
	if err != nil {
		t.Fatal(err)
	}

	key := cache.Key("corrupt")
	path := filepath.Join(root, key[:2], key+".spv.lz4")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("definitely not lz4"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, found, err := dir.Get(key); err != nil || found {
		t.Errorf("Get = %v, %v", found, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestConcurrentPut(t *testing.T) {
	dir, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key := cache.Key("shared")
	binary := bytes.Repeat([]byte{1, 2, 3, 4}, 1024)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := dir.Put(key, binary); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, found, err := dir.Get(key)
	if err != nil || !found || !bytes.Equal(got, binary) {
		t.Errorf("Get after concurrent Put = %v, %v", found, err)
	}
}
