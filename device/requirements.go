package device

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Requirements is a selection policy over already described devices.
type Requirements struct {
	Extensions []string
	Features   []Feature
	// QueueFlags must all be present on at least one queue family.
	QueueFlags QueueFlags
	// Present requires a queue family that can present to the surface.
	Present bool
	// SurfaceFormats requires at least one surface format and present mode.
	SurfaceFormats bool
}

// Check returns nil if d meets every requirement, or an error describing the
// first one it misses.
func (r Requirements) Check(d PhysicalDevice) error {
	if r.QueueFlags != 0 {
		if _, ok := d.QueueFamily(r.QueueFlags); !ok {
			return errors.Newf("%s: no queue family with %s", d.Name, r.QueueFlags)
		}
	}

	if r.Present {
		if _, ok := d.PresentQueueFamily(); !ok {
			return errors.Newf("%s: no queue family can present to the surface", d.Name)
		}
	}

	if missing := d.MissingExtensions(r.Extensions...); len(missing) > 0 {
		return errors.Newf("%s: missing extensions %s", d.Name, strings.Join(missing, ", "))
	}

	if missing := d.Features.Missing(r.Features...); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, f := range missing {
			names = append(names, f.String())
		}
		return errors.Newf("%s: missing features %s", d.Name, strings.Join(names, ", "))
	}

	if r.SurfaceFormats && (len(d.SurfaceFormats) == 0 || len(d.PresentModes) == 0) {
		return errors.Newf("%s: surface has no formats or present modes", d.Name)
	}

	return nil
}

var typeScores = map[DeviceType]int{
	TypeDiscreteGPU:   1000,
	TypeIntegratedGPU: 500,
	TypeVirtualGPU:    250,
	TypeCPU:           100,
}

// Score ranks a device; higher is better. Discrete GPUs win, and a device with
// a single family doing both graphics and present gets a small bonus.
func Score(d PhysicalDevice) int {
	score := typeScores[d.Type]

	for _, family := range d.QueueFamilies {
		if family.SupportsPresent && family.Flags.Has(QueueGraphics) {
			score += 10
			break
		}
	}

	return score
}

// Pick returns the highest scoring device that meets req. Ties go to the
// device enumerated first.
func Pick(devices []PhysicalDevice, req Requirements) (PhysicalDevice, error) {
	bestScore := -1
	var best PhysicalDevice
	var rejections []string

	for _, d := range devices {
		if err := req.Check(d); err != nil {
			rejections = append(rejections, err.Error())
			continue
		}

		score := Score(d)
		if score > bestScore {
			bestScore = score
			best = d
		}
	}

	if bestScore < 0 {
		if len(rejections) == 0 {
			return PhysicalDevice{}, errors.New("failed to find a suitable GPU: no devices")
		}
		return PhysicalDevice{}, errors.Newf("failed to find a suitable GPU: %s", strings.Join(rejections, "; "))
	}

	return best, nil
}
