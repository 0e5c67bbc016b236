// Package shader compiles shader source into SPIR-V and loads the result as
// device shader modules.
//
// Source text may use textual includes, written #include "file" or
// #include <file>, which are resolved relative to the directory of the file
// containing them. Expansion happens before the backend sees the source, so
// every Backend gets a single self-contained translation unit.
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"

	"github.com/vkngwrapper/toolkit/logging"
	"github.com/vkngwrapper/toolkit/shader/cache"
)

// Request is one backend compilation of fully expanded source.
type Request struct {
	Source     string
	Kind       Kind
	Name       string
	EntryPoint string
	Debug      bool
	// Lines maps Source back to the files it was expanded from.
	Lines *SourceMap
}

// Backend translates source text to a SPIR-V byte stream. An error's text is
// reported to the caller verbatim as compiler diagnostics.
//
// CacheKey names the backend together with every setting that changes its
// output, so binaries built with different settings never share a cache
// entry.
type Backend interface {
	Name() string
	CacheKey() string
	Supports(kind Kind) bool
	Compile(req Request) ([]byte, error)
}

// Cache stores compiled binaries between runs. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, binary []byte) error
}

type CompilerOptions struct {
	// EntryPoint defaults to "main".
	EntryPoint string
	// DisableDebugInfo turns off the debug information that is otherwise
	// embedded in every binary.
	DisableDebugInfo bool
	Cache            Cache
}

// Compiler drives one Backend. It keeps no per-call state and may be used from
// several goroutines at once.
type Compiler struct {
	backend    Backend
	entryPoint string
	debug      bool
	cache      Cache
}

func NewCompiler(backend Backend, options CompilerOptions) *Compiler {
	entryPoint := options.EntryPoint
	if entryPoint == "" {
		entryPoint = "main"
	}

	return &Compiler{
		backend:    backend,
		entryPoint: entryPoint,
		debug:      !options.DisableDebugInfo,
		cache:      options.Cache,
	}
}

func (c *Compiler) Backend() Backend {
	return c.backend
}

// CompileFile reads the source at path and compiles it with path as origin.
func (c *Compiler) CompileFile(path string, stage Stage) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read shader %s", path)
	}
	if !utf8.Valid(data) {
		return nil, errors.Newf("read shader %s: not valid UTF-8 text", path)
	}

	return c.Compile(string(data), stage, path)
}

// Compile turns source for stage into a SPIR-V binary. origin is the path of
// the file the source came from: includes resolve against its directory and
// its base name is what the backend reports in diagnostics.
func (c *Compiler) Compile(source string, stage Stage, origin string) ([]byte, error) {
	kind, ok := KindForStage(stage)
	if !ok {
		return nil, errors.WithStack(&UnsupportedStageError{Stage: stage})
	}
	if !c.backend.Supports(kind) {
		return nil, errors.WithStack(&UnsupportedStageError{Stage: stage, Backend: c.backend.Name()})
	}

	name := "<source>"
	var chain []string
	if origin != "" {
		origin = filepath.Clean(origin)
		name = filepath.Base(origin)
		chain = []string{origin}
	}

	log := logging.Logger().WithFields(logrus.Fields{
		"session": uuid.New().String(),
		"shader":  name,
		"stage":   stage.String(),
		"backend": c.backend.Name(),
	})
	start := hrtime.Now()

	expanded, lines, err := expandIncludes(source, name, NewIncludeResolver(filepath.Dir(origin)), chain)
	if err != nil {
		return nil, err
	}

	req := Request{
		Source:     expanded,
		Kind:       kind,
		Name:       name,
		EntryPoint: c.entryPoint,
		Debug:      c.debug,
		Lines:      lines,
	}

	var key string
	if c.cache != nil {
		// Include markers can reach the binary as debug line info.
		var origins string
		if lines.HasIncludes() {
			origins = fmt.Sprint(lines.Spans())
		}
		key = cache.Key(c.backend.CacheKey(), kind.String(), req.EntryPoint, strconv.FormatBool(req.Debug), origins, req.Source)
		binary, found, err := c.cache.Get(key)
		switch {
		case err != nil:
			log.WithError(err).Warn("shader cache lookup failed")
		case found:
			if _, err := BytesToCode(binary); err == nil {
				log.WithField("duration", hrtime.Since(start)).Debug("shader cache hit")
				return binary, nil
			}
			log.Warn("ignoring invalid cached shader binary")
		}
	}

	binary, err := c.backend.Compile(req)
	if err != nil {
		return nil, errors.WithStack(&CompileError{Name: name, Stage: stage, Diagnostics: err.Error(), Err: err})
	}
	if _, err := BytesToCode(binary); err != nil {
		return nil, errors.WithStack(&CompileError{Name: name, Stage: stage, Diagnostics: "backend produced an invalid binary", Err: err})
	}

	if c.cache != nil {
		if err := c.cache.Put(key, binary); err != nil {
			log.WithError(err).Warn("could not store shader binary in cache")
		}
	}

	log.WithFields(logrus.Fields{
		"bytes":    len(binary),
		"duration": hrtime.Since(start),
	}).Info("compiled shader")

	return binary, nil
}
