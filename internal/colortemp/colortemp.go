// Package colortemp converts a colour temperature in Kelvin into RGB and HSV
// using Tanner Helland's piecewise curve fit of the blackbody locus.
package colortemp

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidColorTemperature is returned for non-positive or non-finite Kelvin values
var ErrInvalidColorTemperature = errors.New("invalid color temperature")

// RGB is a colour triple. KelvinToRGB yields channels in 0..255,
// Scale turns that into driver-ready values in 0..1.
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// DriverAdjustment compensates for LED driver characteristics per channel
type DriverAdjustment struct {
	R float64
	G float64
	B float64
}

// NoAdjustment leaves channels untouched
var NoAdjustment = DriverAdjustment{R: 1, G: 1, B: 1}

// KelvinToRGB maps a colour temperature to RGB with every channel clamped to 0..255
func KelvinToRGB(kelvin float64) (RGB, error) {
	if kelvin <= 0 || math.IsNaN(kelvin) || math.IsInf(kelvin, 0) {
		return RGB{}, fmt.Errorf("%w: %v K", ErrInvalidColorTemperature, kelvin)
	}

	t := kelvin / 100

	var red, green, blue float64

	if t <= 66 {
		red = 255
		green = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		red = 329.698727446 * math.Pow(t-60, -0.1332047592)
		green = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}

	switch {
	case t >= 66:
		blue = 255
	case t <= 19:
		blue = 0
	default:
		blue = 138.5177312231*math.Log(t-10) - 305.0447927307
	}

	return RGB{
		R: clamp(red),
		G: clamp(green),
		B: clamp(blue),
	}, nil
}

// KelvinToHSV maps a colour temperature to HSV on the 0..255 value scale
func KelvinToHSV(kelvin float64) (HSV, error) {
	rgb, err := KelvinToRGB(kelvin)
	if err != nil {
		return HSV{}, err
	}
	return rgb.HSV(), nil
}

// Scale applies the driver adjustment and normalizes 0..255 channels to 0..1
func (c RGB) Scale(adj DriverAdjustment) RGB {
	return RGB{
		R: c.R / 255 * adj.R,
		G: c.G / 255 * adj.G,
		B: c.B / 255 * adj.B,
	}
}

// Hex formats a 0..255 colour as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channelByte(c.R), channelByte(c.G), channelByte(c.B))
}

func channelByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}
