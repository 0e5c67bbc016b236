package shader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/toolkit/shader"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIncludeResolverJoinsPath(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b")
	writeFile(t, filepath.Join(dir, "foo.glsl"), "float foo() { return 1.0; }\n")

	resolver := shader.NewIncludeResolver(dir)
	for i := 0; i < 2; i++ {
		included, err := resolver.Resolve("foo.glsl")
		if err != nil {
			t.Fatal(err)
		}
		if included.Name != filepath.Join(dir, "foo.glsl") {
			t.Errorf("Name = %q", included.Name)
		}
		if included.Content != "float foo() { return 1.0; }\n" {
			t.Errorf("Content = %q", included.Content)
		}
	}
}

func TestIncludeResolverScopesNestedIncludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "lighting.glsl"), "#include \"brdf.glsl\"\n")

	included, err := shader.NewIncludeResolver(root).Resolve("lib/lighting.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if dir := included.Resolver().Dir(); dir != filepath.Join(root, "lib") {
		t.Errorf("nested resolver dir = %q", dir)
	}
}

func TestIncludeResolverFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "binary.glsl"), "\xff\xfe\x00garbage")

	tests := []struct {
		name      string
		requested string
	}{
		{"missing", "missing.glsl"},
		{"not utf8", "binary.glsl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shader.NewIncludeResolver(root).Resolve(tt.requested)
			var includeErr *shader.IncludeError
			if !errors.As(err, &includeErr) {
				t.Fatalf("err = %v", err)
			}
			if includeErr.Path != filepath.Join(root, tt.requested) {
				t.Errorf("Path = %q", includeErr.Path)
			}
		})
	}
}
