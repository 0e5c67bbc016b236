// Package glslc compiles GLSL and HLSL shaders with the glslc executable that
// ships with the Vulkan SDK.
package glslc

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/toolkit/shader"
)

const DefaultTargetEnv = "vulkan1.2"

// Backend runs glslc once per compilation, feeding the expanded source on
// stdin and reading SPIR-V from stdout.
type Backend struct {
	// Path to the executable; "glslc" is looked up on PATH when empty.
	Path string
	// TargetEnv is passed as --target-env; DefaultTargetEnv when empty.
	TargetEnv string
	// Language is "glsl" (default) or "hlsl".
	Language  string
	ExtraArgs []string
}

var stageFlags = map[shader.Kind]string{
	shader.KindVertex:         "vert",
	shader.KindFragment:       "frag",
	shader.KindCompute:        "comp",
	shader.KindTessControl:    "tesc",
	shader.KindTessEvaluation: "tese",
	shader.KindGeometry:       "geom",
	shader.KindRayGeneration:  "rgen",
	shader.KindAnyHit:         "rahit",
	shader.KindClosestHit:     "rchit",
	shader.KindMiss:           "rmiss",
	shader.KindIntersection:   "rint",
}

func (b *Backend) Name() string {
	return "glslc"
}

// CacheKey leaves out Path: any glslc is expected to produce the same binary
// for the same arguments.
func (b *Backend) CacheKey() string {
	return fmt.Sprintf("glslc target-env=%s language=%s args=%q", b.targetEnv(), b.Language, b.ExtraArgs)
}

func (b *Backend) Supports(kind shader.Kind) bool {
	_, ok := stageFlags[kind]
	return ok
}

func (b *Backend) path() string {
	if b.Path == "" {
		return "glslc"
	}
	return b.Path
}

func (b *Backend) targetEnv() string {
	if b.TargetEnv == "" {
		return DefaultTargetEnv
	}
	return b.TargetEnv
}

// Args returns the command line used for req, without the executable.
func (b *Backend) Args(req shader.Request) []string {
	args := []string{
		"-fshader-stage=" + stageFlags[req.Kind],
		"-fentry-point=" + req.EntryPoint,
		"--target-env=" + b.targetEnv(),
	}
	if b.Language != "" {
		args = append(args, "-x", b.Language)
	}
	if req.Debug {
		args = append(args, "-g")
	}
	args = append(args, b.ExtraArgs...)
	return append(args, "-o", "-", "-")
}

func (b *Backend) Compile(req shader.Request) ([]byte, error) {
	cmd := exec.Command(b.path(), b.Args(req)...)
	source := req.Source
	if req.Lines.HasIncludes() {
		source = b.LineDirectives(req)
	}
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diagnostics := strings.TrimSpace(strings.ReplaceAll(stderr.String(), "<stdin>", req.Name))
		if diagnostics == "" {
			return nil, errors.Wrapf(err, "run %s", b.path())
		}
		return nil, errors.Newf("%s", diagnostics)
	}

	return stdout.Bytes(), nil
}

var versionDirective = regexp.MustCompile(`^\s*#\s*version\b`)

const lineDirectiveExtension = "#extension GL_GOOGLE_cpp_style_line_directive : enable\n"

// LineDirectives returns req.Source with a #line marker at the start of every
// run of lines from a different file, so glslc reports errors against the file
// and line they came from. GLSL needs the marker extension enabled right after
// #version, which must stay the first directive.
func (b *Backend) LineDirectives(req shader.Request) string {
	glsl := b.Language == "" || b.Language == "glsl"

	starts := map[int]bool{}
	for _, span := range req.Lines.Spans() {
		starts[span.Line] = true
	}

	lines := strings.SplitAfter(req.Source, "\n")

	// The line after which the extension goes; 0 puts it first.
	extensionAfter := 0
	if glsl {
		for i, line := range lines {
			if versionDirective.MatchString(line) {
				extensionAfter = i + 1
				break
			}
		}
	}

	var out strings.Builder
	out.Grow(len(req.Source) + len(req.Lines.Spans())*64)

	if glsl && extensionAfter == 0 {
		out.WriteString(lineDirectiveExtension)
	}

	for i, line := range lines {
		n := i + 1
		marker := starts[n] || (glsl && n == extensionAfter+1)
		if glsl && n <= extensionAfter {
			marker = false
		}
		if marker {
			if file, fileLine, ok := req.Lines.Locate(n); ok {
				fmt.Fprintf(&out, "#line %d \"%s\"\n", fileLine, filepath.ToSlash(file))
			}
		}

		out.WriteString(line)

		if glsl && n == extensionAfter {
			if !strings.HasSuffix(line, "\n") {
				out.WriteString("\n")
			}
			out.WriteString(lineDirectiveExtension)
		}
	}

	return out.String()
}
