// Package wgsl compiles WGSL shaders to SPIR-V in process with naga, without
// any external tools.
package wgsl

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/vkngwrapper/toolkit/shader"
)

// Backend lowers WGSL through naga's IR. naga only targets vertex, fragment and
// compute entry points.
type Backend struct {
	// Version defaults to SPIR-V 1.3.
	Version spirv.Version
	// SkipValidation disables IR validation before code generation.
	SkipValidation bool
}

var irStages = map[shader.Kind]ir.ShaderStage{
	shader.KindVertex:   ir.StageVertex,
	shader.KindFragment: ir.StageFragment,
	shader.KindCompute:  ir.StageCompute,
}

func (b *Backend) Name() string {
	return "naga"
}

func (b *Backend) CacheKey() string {
	version := b.version()
	return fmt.Sprintf("naga spirv=%d.%d skip-validation=%t", version.Major, version.Minor, b.SkipValidation)
}

func (b *Backend) version() spirv.Version {
	if b.Version == (spirv.Version{}) {
		return spirv.Version1_3
	}
	return b.Version
}

func (b *Backend) Supports(kind shader.Kind) bool {
	_, ok := irStages[kind]
	return ok
}

func (b *Backend) Compile(req shader.Request) ([]byte, error) {
	stage, ok := irStages[req.Kind]
	if !ok {
		return nil, errors.Newf("naga cannot compile %s shaders", req.Kind)
	}

	ast, err := naga.Parse(req.Source)
	if err != nil {
		return nil, locate(req, err)
	}

	module, err := naga.LowerWithSource(ast, req.Source)
	if err != nil {
		return nil, locate(req, err)
	}

	if err := checkEntryPoint(module, req.EntryPoint, stage); err != nil {
		return nil, errors.Wrapf(err, "%s", req.Name)
	}

	if !b.SkipValidation {
		validationErrors, err := naga.Validate(module)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: validation", req.Name)
		}
		if len(validationErrors) > 0 {
			return nil, errors.Wrapf(&validationErrors[0], "%s: validation failed", req.Name)
		}
	}

	return naga.GenerateSPIRV(module, spirv.Options{
		Version: b.version(),
		Debug:   req.Debug,
	})
}

func checkEntryPoint(module *ir.Module, name string, stage ir.ShaderStage) error {
	for _, entryPoint := range module.EntryPoints {
		if entryPoint.Name != name {
			continue
		}
		if entryPoint.Stage != stage {
			return errors.Newf("entry point %q has the wrong stage", name)
		}
		return nil
	}
	return errors.Newf("no entry point named %q", name)
}

// naga reports positions as "line 3, column 7" from the parser and as "3:7:"
// from lowering.
var (
	parserPosition = regexp.MustCompile(`line (\d+), column (\d+)`)
	lowerPosition  = regexp.MustCompile(`(^|\s)(\d+):(\d+):`)
)

// locate rewrites positions in naga's message from expanded source lines to
// file:line:column of the file each line came from. Without includes the
// lines already match the shader itself.
func locate(req shader.Request, err error) error {
	if !req.Lines.HasIncludes() {
		return errors.Wrapf(err, "%s", req.Name)
	}

	position := func(line, column string) string {
		n, _ := strconv.Atoi(line)
		file, fileLine, ok := req.Lines.Locate(n)
		if !ok {
			return line + ":" + column
		}
		return fmt.Sprintf("%s:%d:%s", file, fileLine, column)
	}

	message := parserPosition.ReplaceAllStringFunc(err.Error(), func(match string) string {
		parts := parserPosition.FindStringSubmatch(match)
		return position(parts[1], parts[2])
	})
	message = lowerPosition.ReplaceAllStringFunc(message, func(match string) string {
		parts := lowerPosition.FindStringSubmatch(match)
		return parts[1] + position(parts[2], parts[3]) + ":"
	})

	return errors.WithSecondaryError(errors.Newf("%s", message), err)
}
