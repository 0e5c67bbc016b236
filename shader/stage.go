package shader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Stage is a pipeline stage, with the same bit values as VkShaderStageFlagBits.
type Stage uint32

const (
	StageVertex                 Stage = 0x00000001
	StageTessellationControl    Stage = 0x00000002
	StageTessellationEvaluation Stage = 0x00000004
	StageGeometry               Stage = 0x00000008
	StageFragment               Stage = 0x00000010
	StageCompute                Stage = 0x00000020
	StageTask                   Stage = 0x00000040
	StageMesh                   Stage = 0x00000080
	StageRaygen                 Stage = 0x00000100
	StageAnyHit                 Stage = 0x00000200
	StageClosestHit             Stage = 0x00000400
	StageMiss                   Stage = 0x00000800
	StageIntersection           Stage = 0x00001000
	StageCallable               Stage = 0x00002000
)

var stageNames = map[Stage]string{
	StageVertex:                 "vertex",
	StageTessellationControl:    "tessellation control",
	StageTessellationEvaluation: "tessellation evaluation",
	StageGeometry:               "geometry",
	StageFragment:               "fragment",
	StageCompute:                "compute",
	StageTask:                   "task",
	StageMesh:                   "mesh",
	StageRaygen:                 "ray generation",
	StageAnyHit:                 "any hit",
	StageClosestHit:             "closest hit",
	StageMiss:                   "miss",
	StageIntersection:           "intersection",
	StageCallable:               "callable",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%#x)", uint32(s))
}

// Kind is the compiler's notion of what a shader source is compiled as.
type Kind int

const (
	KindVertex Kind = iota
	KindFragment
	KindCompute
	KindTessControl
	KindTessEvaluation
	KindGeometry
	KindRayGeneration
	KindAnyHit
	KindClosestHit
	KindMiss
	KindIntersection
)

var stageKinds = map[Stage]Kind{
	StageVertex:                 KindVertex,
	StageFragment:               KindFragment,
	StageCompute:                KindCompute,
	StageTessellationControl:    KindTessControl,
	StageTessellationEvaluation: KindTessEvaluation,
	StageGeometry:               KindGeometry,
	StageRaygen:                 KindRayGeneration,
	StageAnyHit:                 KindAnyHit,
	StageClosestHit:             KindClosestHit,
	StageMiss:                   KindMiss,
	StageIntersection:           KindIntersection,
}

var kindNames = map[Kind]string{
	KindVertex:         "vert",
	KindFragment:       "frag",
	KindCompute:        "comp",
	KindTessControl:    "tesc",
	KindTessEvaluation: "tese",
	KindGeometry:       "geom",
	KindRayGeneration:  "rgen",
	KindAnyHit:         "rahit",
	KindClosestHit:     "rchit",
	KindMiss:           "rmiss",
	KindIntersection:   "rint",
}

// String returns the conventional file suffix for the kind, e.g. "vert".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindForStage maps a single pipeline stage to its compiler kind. Stages
// without a mapping, and combinations of stage bits, report false.
func KindForStage(stage Stage) (Kind, bool) {
	kind, ok := stageKinds[stage]
	return kind, ok
}

var sourceLanguageSuffixes = []string{".glsl", ".hlsl", ".wgsl"}

// StageFromPath infers the stage from a file name such as "shade.frag",
// "shade.frag.glsl" or "hit.rchit".
func StageFromPath(path string) (Stage, bool) {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range sourceLanguageSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for stage, kind := range stageKinds {
		if kind.String() == ext {
			return stage, true
		}
	}
	return 0, false
}
