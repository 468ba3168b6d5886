// Package palette assigns one display colour to each shortest-tier segment.
package palette

import "fmt"

// Color is an opaque RGB colour.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// String returns the colour in CSS rgb() notation.
func (c Color) String() string { return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B) }

// Palette maps colour ids 0..Len()-1 to distinct colours.
type Palette struct {
	colors []Color
}

// rampLimit is the largest count the blue-to-white ramp keeps distinct.
const rampLimit = 255

// Assign returns count distinct colours. The same count always yields the
// same sequence.
//
// Up to rampLimit colours step along a ramp from pure blue towards white;
// larger counts are spread evenly over the 24-bit colour space.
func Assign(count int) Palette {
	if count <= 0 {
		return Palette{}
	}
	colors := make([]Color, count)
	if count <= rampLimit {
		step := rampLimit / count
		for i := range colors {
			v := uint8(step * i)
			colors[i] = Color{R: v, G: v, B: uint8(rampLimit - step*i)}
		}
		return Palette{colors: colors}
	}
	stride := 0xFFFFFF / count
	for i := range colors {
		v := stride * i
		colors[i] = Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
	}
	return Palette{colors: colors}
}

// Color returns the colour for id.
func (p Palette) Color(id int) (Color, bool) {
	if id < 0 || id >= len(p.colors) {
		return Color{}, false
	}
	return p.colors[id], true
}

// Len returns the number of colours.
func (p Palette) Len() int { return len(p.colors) }

// Map returns the colours keyed by id.
func (p Palette) Map() map[int]Color {
	m := make(map[int]Color, len(p.colors))
	for i, c := range p.colors {
		m[i] = c
	}
	return m
}
