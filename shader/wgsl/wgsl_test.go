package wgsl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/naga/spirv"

	"github.com/vkngwrapper/toolkit/shader"
	"github.com/vkngwrapper/toolkit/shader/wgsl"
)

const vertexSource = `
@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

func newCompiler() *shader.Compiler {
	return shader.NewCompiler(&wgsl.Backend{SkipValidation: true}, shader.CompilerOptions{})
}

func checkBinary(t *testing.T, binary []byte) {
	t.Helper()
	if len(binary) == 0 || len(binary)%shader.WordSize != 0 {
		t.Fatalf("binary length %d", len(binary))
	}
	code, err := shader.BytesToCode(binary)
	if err != nil {
		t.Fatal(err)
	}
	if code[0] != shader.Magic {
		t.Errorf("magic = 0x%08x", code[0])
	}
}

func TestCompileVertex(t *testing.T) {
	binary, err := newCompiler().Compile(vertexSource, shader.StageVertex, "tri.vert.wgsl")
	if err != nil {
		t.Fatal(err)
	}
	checkBinary(t, binary)
}

func TestCompileWithInclude(t *testing.T) {
	dir := t.TempDir()
	common := "fn scale(v: f32) -> f32 {\n    return v * 2.0;\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "common.wgsl"), []byte(common), 0o644); err != nil {
		t.Fatal(err)
	}

	source := `#include "common.wgsl"

@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(scale(0.25), 0.0, 0.0, 1.0);
}
`
	binary, err := newCompiler().Compile(source, shader.StageFragment, filepath.Join(dir, "tint.frag.wgsl"))
	if err != nil {
		t.Fatal(err)
	}
	checkBinary(t, binary)
}

func TestCompileWrongStage(t *testing.T) {
	_, err := newCompiler().Compile(vertexSource, shader.StageFragment, "tri.frag.wgsl")

	var compileErr *shader.CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestCompileMissingEntryPoint(t *testing.T) {
	compiler := shader.NewCompiler(&wgsl.Backend{SkipValidation: true}, shader.CompilerOptions{EntryPoint: "vs_main"})
	_, err := compiler.Compile(vertexSource, shader.StageVertex, "tri.vert.wgsl")

	var compileErr *shader.CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := newCompiler().Compile("@vertex fn main( {", shader.StageVertex, "broken.vert.wgsl")

	var compileErr *shader.CompileError
	if !errors.As(err, &compileErr) || compileErr.Diagnostics == "" {
		t.Fatalf("err = %v", err)
	}
}

func TestUnsupportedStages(t *testing.T) {
	for _, stage := range []shader.Stage{shader.StageGeometry, shader.StageRaygen, shader.StageTessellationControl} {
		_, err := newCompiler().Compile(vertexSource, stage, "x.wgsl")

		var stageErr *shader.UnsupportedStageError
		if !errors.As(err, &stageErr) || stageErr.Backend != "naga" {
			t.Errorf("%s: err = %v", stage, err)
		}
	}
}

func TestDiagnosticsNameIncludedFile(t *testing.T) {
	dir := t.TempDir()
	common := filepath.Join(dir, "common.wgsl")
	if err := os.WriteFile(common, []byte("fn ok() {}\nfn broken( {\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	source := "#include \"common.wgsl\"\n\n@vertex\nfn main() -> @builtin(position) vec4<f32> {\n    return vec4<f32>(0.0);\n}\n"
	_, err := newCompiler().Compile(source, shader.StageVertex, filepath.Join(dir, "tri.vert.wgsl"))

	var compileErr *shader.CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(compileErr.Diagnostics, common+":2:") {
		t.Errorf("diagnostics %q do not point at %s line 2", compileErr.Diagnostics, common)
	}
}

func TestCacheKey(t *testing.T) {
	base := (&wgsl.Backend{}).CacheKey()
	if (&wgsl.Backend{Version: spirv.Version1_3}).CacheKey() != base {
		t.Error("the default version should share a key with SPIR-V 1.3")
	}
	for name, b := range map[string]*wgsl.Backend{
		"version":         {Version: spirv.Version{Major: 1, Minor: 5}},
		"skip validation": {SkipValidation: true},
	} {
		if b.CacheKey() == base {
			t.Errorf("%s does not change the cache key", name)
		}
	}
}
