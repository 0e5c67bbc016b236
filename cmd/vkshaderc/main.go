// Command vkshaderc compiles GLSL, HLSL and WGSL shaders to SPIR-V.
//
// Usage:
//
//	vkshaderc [options] <file or directory>...
//
// The stage is taken from the file name (tri.vert, blit.frag.wgsl, hit.rchit.hlsl).
// Directories are searched recursively; files without a stage suffix, such as
// shared include files, are skipped there.
//
// Settings come from the environment, or a .env file, and may be overridden
// with flags:
//
//	SHADER_BACKEND     auto, glslc or wgsl
//	GLSLC_PATH         glslc executable
//	SHADER_TARGET_ENV  glslc --target-env
//	SHADER_DEBUG_INFO  embed debug info
//	SHADER_CACHE_DIR   compiled binary cache, off when empty
//	SHADER_JOBS        parallel compilations
//	LOG_LEVEL          logrus level
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vkngwrapper/toolkit/config"
	"github.com/vkngwrapper/toolkit/logging"
	"github.com/vkngwrapper/toolkit/shader"
	"github.com/vkngwrapper/toolkit/shader/cache"
	"github.com/vkngwrapper/toolkit/shader/glslc"
	"github.com/vkngwrapper/toolkit/shader/wgsl"
)

var (
	outDir     = flag.String("o", "", "output directory (default: next to each source)")
	backend    = flag.String("backend", "", "override SHADER_BACKEND")
	jobs       = flag.Int("j", 0, "override SHADER_JOBS")
	entryPoint = flag.String("entry", "main", "entry point name")
)

type job struct {
	path  string
	stage shader.Stage
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input specified")
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.ShaderBackend = *backend
	}
	if *jobs > 0 {
		cfg.ShaderJobs = *jobs
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLogger(logger)

	work, err := collect(flag.Args())
	if err != nil {
		logger.Fatalf("%+v", err)
	}

	if err := build(cfg, *entryPoint, *outDir, work); err != nil {
		logger.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: vkshaderc [options] <file or directory>...\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

// collect expands paths into compile jobs. A file named explicitly must carry
// a stage suffix.
func collect(paths []string) ([]job, error) {
	var work []job
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		if !info.IsDir() {
			stage, ok := shader.StageFromPath(path)
			if !ok {
				return nil, errors.Newf("%s: cannot tell the shader stage from the file name", path)
			}
			work = append(work, job{path: path, stage: stage})
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if stage, ok := shader.StageFromPath(p); ok {
				work = append(work, job{path: p, stage: stage})
			}
			return nil
		})
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return work, nil
}

// outputPath names the binary for source: tri.vert and tri.vert.glsl both
// become tri.vert.spv.
func outputPath(dir, source string) string {
	name := filepath.Base(source)
	lower := strings.ToLower(name)
	for _, ext := range []string{".glsl", ".hlsl", ".wgsl"} {
		if strings.HasSuffix(lower, ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}

	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, name+".spv")
}

func backendFor(cfg config.Config, path string) shader.Backend {
	lower := strings.ToLower(path)

	name := cfg.ShaderBackend
	if name == config.BackendAuto {
		name = config.BackendGlslc
		if strings.HasSuffix(lower, ".wgsl") {
			name = config.BackendWGSL
		}
	}

	if name == config.BackendWGSL {
		return &wgsl.Backend{}
	}

	b := &glslc.Backend{Path: cfg.GlslcPath, TargetEnv: cfg.ShaderTargetEnv}
	if strings.HasSuffix(lower, ".hlsl") {
		b.Language = "hlsl"
	}
	return b
}

func build(cfg config.Config, entryPoint, outDir string, work []job) error {
	var binaryCache shader.Cache
	if cfg.ShaderCacheDir != "" {
		dir, err := cache.Open(cfg.ShaderCacheDir)
		if err != nil {
			return err
		}
		binaryCache = dir
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return errors.WithStack(err)
		}
	}

	log := logging.Logger()

	var group errgroup.Group
	group.SetLimit(cfg.ShaderJobs)
	for _, j := range work {
		group.Go(func() error {
			compiler := shader.NewCompiler(backendFor(cfg, j.path), shader.CompilerOptions{
				EntryPoint:       entryPoint,
				DisableDebugInfo: !cfg.ShaderDebugInfo,
				Cache:            binaryCache,
			})

			binary, err := compiler.CompileFile(j.path, j.stage)
			if err != nil {
				log.WithField("shader", j.path).Error(err)
				return err
			}

			out := outputPath(outDir, j.path)
			if err := os.WriteFile(out, binary, 0o644); err != nil {
				return errors.Wrapf(err, "write %s", out)
			}
			log.WithFields(logrus.Fields{"shader": j.path, "output": out}).Debug("wrote binary")
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return errors.Wrapf(err, "compiling %d shaders", len(work))
	}
	return nil
}
