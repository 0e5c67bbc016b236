// Package cache keeps compiled shader binaries on disk, lz4 compressed, so
// unchanged sources are not recompiled.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"

	"github.com/vkngwrapper/toolkit/logging"
)

const suffix = ".spv.lz4"

// Key hashes the parts that determine a compiled binary into a cache key.
func Key(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		// length prefix keeps ("ab", "c") and ("a", "bc") apart
		var size [8]byte
		n := uint64(len(part))
		for i := range size {
			size[i] = byte(n >> (8 * i))
		}
		h.Write(size[:])
		io.WriteString(h, part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Dir is a cache rooted at a directory. Entries are written to a temporary file
// and renamed into place, so concurrent writers never expose partial entries.
type Dir struct {
	root string
}

func Open(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create shader cache %s", root)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) path(key string) string {
	if len(key) < 2 {
		return filepath.Join(d.root, key+suffix)
	}
	return filepath.Join(d.root, key[:2], key+suffix)
}

// Get returns the binary stored under key. A corrupt entry is removed and
// reported as a miss.
func (d *Dir) Get(key string) ([]byte, bool, error) {
	path := d.path(key)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "open cache entry %s", path)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(f)); err != nil {
		logging.Logger().WithError(err).WithField("path", path).Warn("removing corrupt shader cache entry")
		os.Remove(path)
		return nil, false, nil
	}

	return buf.Bytes(), true, nil
}

// Put stores binary under key, replacing any previous entry.
func (d *Dir) Put(key string, binary []byte) error {
	path := d.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create cache directory for %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "entry-*")
	if err != nil {
		return errors.Wrap(err, "create cache entry")
	}
	defer os.Remove(tmp.Name())

	writer := lz4.NewWriter(tmp)
	if _, err := writer.Write(binary); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "compress cache entry %s", path)
	}
	if err := writer.Close(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "compress cache entry %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "write cache entry %s", path)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "store cache entry %s", path)
	}
	return nil
}
