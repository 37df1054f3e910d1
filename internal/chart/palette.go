package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PaletteKind selects how datasets are colored.
type PaletteKind int

const (
	PaletteDefault PaletteKind = iota
	PaletteOcean
	PaletteSunset
	PaletteForest
	// PaletteSequential shades each bar by its magnitude instead of giving
	// every dataset its own hue.
	PaletteSequential
)

var paletteNames = map[PaletteKind]string{
	PaletteDefault:    "default",
	PaletteOcean:      "ocean",
	PaletteSunset:     "sunset",
	PaletteForest:     "forest",
	PaletteSequential: "sequential",
}

// PaletteNames lists the accepted palette names in display order.
func PaletteNames() []string {
	return []string{"default", "ocean", "sunset", "forest", "sequential"}
}

// String returns the palette name.
func (k PaletteKind) String() string {
	if n, ok := paletteNames[k]; ok {
		return n
	}
	return "default"
}

// ParsePalette maps a palette name to its kind. Unknown names return
// PaletteDefault together with an error so callers may choose to fall back.
func ParsePalette(name string) (PaletteKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return PaletteDefault, nil
	}
	for k, n := range paletteNames {
		if n == name {
			return k, nil
		}
	}
	return PaletteDefault, fmt.Errorf("unknown palette %q — available: %s", name, strings.Join(PaletteNames(), ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (k PaletteKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PaletteKind) UnmarshalText(b []byte) error {
	v, err := ParsePalette(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// RGB is an opaque base color.
type RGB struct {
	R, G, B uint8
}

// RGBA formats the color as a CSS rgba() string.
func (c RGB) RGBA(alpha float64) string {
	a := strconv.FormatFloat(math.Round(alpha*1e4)/1e4, 'f', -1, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, a)
}

// Fill is the translucent background form of the color.
func (c RGB) Fill() string { return c.RGBA(fillAlpha) }

// Border is the opaque outline form of the color.
func (c RGB) Border() string { return c.RGBA(1) }

const (
	fillAlpha = 0.6

	// Sequential shading bounds.
	minOpacity  = 0.3
	maxOpacity  = 1.0
	flatOpacity = 0.7
)

// sequentialBase is the hue shaded by PaletteSequential.
var sequentialBase = RGB{54, 162, 235}

var (
	defaultSwatches = []RGB{
		{54, 162, 235},  // blue
		{255, 99, 132},  // red
		{75, 192, 192},  // teal
		{255, 206, 86},  // yellow
		{153, 102, 255}, // purple
		{255, 159, 64},  // orange
	}
	oceanSwatches = []RGB{
		{0, 102, 153}, {0, 153, 204}, {102, 204, 255},
		{0, 204, 153}, {204, 255, 255}, {153, 204, 204},
	}
	sunsetSwatches = []RGB{
		{255, 87, 34}, {255, 152, 0}, {255, 193, 7},
		{255, 235, 59}, {121, 85, 72}, {244, 67, 54},
	}
	forestSwatches = []RGB{
		{46, 125, 50}, {102, 187, 106}, {165, 214, 167},
		{139, 195, 74}, {85, 139, 47}, {27, 94, 32},
	}
)

// Swatches returns the base colors cycled across datasets. The sequential
// palette has no hues of its own and falls back to the default set.
func (k PaletteKind) Swatches() []RGB {
	switch k {
	case PaletteOcean:
		return oceanSwatches
	case PaletteSunset:
		return sunsetSwatches
	case PaletteForest:
		return forestSwatches
	default:
		return defaultSwatches
	}
}

// Swatch returns the color assigned to dataset i.
func (k PaletteKind) Swatch(i int) RGB {
	s := k.Swatches()
	return s[i%len(s)]
}

// SequentialOpacities maps each value linearly onto [0.3, 1.0] by its
// position between the series minimum and maximum. A flat series gets 0.7
// everywhere.
func SequentialOpacities(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	for i, v := range values {
		if span == 0 {
			out[i] = flatOpacity
			continue
		}
		out[i] = minOpacity + (v-lo)/span*(maxOpacity-minOpacity)
	}
	return out
}

// SequentialColors shades base by SequentialOpacities.
func SequentialColors(values []float64, base RGB) []string {
	ops := SequentialOpacities(values)
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = base.RGBA(o)
	}
	return out
}
