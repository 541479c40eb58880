package colortemp

import "math"

// HSV is hue and saturation in 0..1 with the value on the same scale as the RGB it came from
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// HSV converts the colour to hue, saturation and value
func (c RGB) HSV() HSV {
	maxc := math.Max(c.R, math.Max(c.G, c.B))
	minc := math.Min(c.R, math.Min(c.G, c.B))

	if maxc == minc {
		return HSV{H: 0, S: 0, V: maxc}
	}

	span := maxc - minc
	s := span / maxc
	rc := (maxc - c.R) / span
	gc := (maxc - c.G) / span
	bc := (maxc - c.B) / span

	var h float64
	switch maxc {
	case c.R:
		h = bc - gc
	case c.G:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}

	return HSV{H: h, S: s, V: maxc}
}

// RGB converts back to red, green and blue on the scale of V
func (c HSV) RGB() RGB {
	if c.S == 0 {
		return RGB{R: c.V, G: c.V, B: c.V}
	}

	sector := math.Floor(c.H * 6)
	f := c.H*6 - sector
	p := c.V * (1 - c.S)
	q := c.V * (1 - c.S*f)
	t := c.V * (1 - c.S*(1-f))

	switch int(sector) % 6 {
	case 0:
		return RGB{R: c.V, G: t, B: p}
	case 1:
		return RGB{R: q, G: c.V, B: p}
	case 2:
		return RGB{R: p, G: c.V, B: t}
	case 3:
		return RGB{R: p, G: q, B: c.V}
	case 4:
		return RGB{R: t, G: p, B: c.V}
	default:
		return RGB{R: c.V, G: p, B: q}
	}
}
