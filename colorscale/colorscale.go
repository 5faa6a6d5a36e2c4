// Package colorscale maps severity numbers onto display colors.
package colorscale

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Scale is a two-point linear RGB gradient over [Min, Max].
type Scale struct {
	From colorful.Color
	To   colorful.Color
	Min  float64
	Max  float64
}

// Stop colors a stop's elevation: warning yellow at 0%, white from 20% up.
var Stop = MustNew("#ffcc00", "#ffffff", 0, 20)

// New builds a Scale from two hex colors.
func New(from, to string, min, max float64) (Scale, error) {
	f, err := colorful.Hex(from)
	if err != nil {
		return Scale{}, fmt.Errorf("parse from color %q: %w", from, err)
	}
	t, err := colorful.Hex(to)
	if err != nil {
		return Scale{}, fmt.Errorf("parse to color %q: %w", to, err)
	}
	if !(max > min) {
		return Scale{}, fmt.Errorf("scale domain [%g, %g] is empty", min, max)
	}
	return Scale{From: f, To: t, Min: min, Max: max}, nil
}

// MustNew is like New but panics on a bad color or domain.
func MustNew(from, to string, min, max float64) Scale {
	s, err := New(from, to, min, max)
	if err != nil {
		panic(err)
	}
	return s
}

// At returns the color for v. Values outside the domain clamp to the nearest
// endpoint; NaN is treated as Min.
func (s Scale) At(v float64) colorful.Color {
	if s.Max <= s.Min || math.IsNaN(v) {
		return s.From
	}
	t := (v - s.Min) / (s.Max - s.Min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return s.From.BlendRgb(s.To, t).Clamped()
}

// CSS returns At(v) as #rrggbb.
func (s Scale) CSS(v float64) string {
	return s.At(v).Hex()
}

// MaxLossBase is the shade behind a max-loss cell.
const MaxLossBase = "#993344"

// MaxLossShade tints MaxLossBase with an alpha proportional to how close
// maxLoss is to limit, saturating at limit. A non-positive limit is opaque.
func MaxLossShade(maxLoss, limit float64) string {
	ratio := 1.0
	if limit > 0 {
		ratio = math.Min(1, math.Abs(maxLoss/limit))
	}
	if math.IsNaN(ratio) {
		ratio = 0
	}
	alpha := int(math.Round(255 * ratio))
	return fmt.Sprintf("%s%02x", MaxLossBase, alpha)
}
