// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package kernel

// tasseledCoeffs is the fixed 3x6 Tasseled Cap transform, rows ordered
// brightness, greenness, wetness; columns ordered blue, green, red, nir,
// swir1, swir2.
var tasseledCoeffs = [3][6]float64{
	{0.2043, 0.4158, 0.5524, 0.5741, 0.3124, 0.2303},      // brightness
	{-0.1603, -0.2819, -0.4934, 0.7940, -0.0002, -0.1446}, // greenness
	{0.0315, 0.2021, 0.3102, 0.1594, -0.6806, -0.6109},    // wetness
}

// Tasseled computes one component of the Tasseled Cap transform: a fixed
// linear combination of the six bands (blue, green, red, nir, swir1,
// swir2), unscaled.
//
// Component selects which row(s) of tasseledCoeffs to combine: Brightness,
// Greenness, and Wetness select a single row; Disturbance combines all
// three as brightness - greenness - wetness.
type Tasseled struct {
	Component TasseledComponent
}

// TasseledComponent names which linear combination a Tasseled kernel
// computes.
type TasseledComponent int

const (
	Brightness TasseledComponent = iota
	Greenness
	Wetness
	Disturbance
)

func (Tasseled) NumInputs() int { return 6 }

func (t Tasseled) Eval(v []int16) (float64, bool) {
	var sum float64
	switch t.Component {
	case Brightness:
		sum = dot6(tasseledCoeffs[0], v)
	case Greenness:
		sum = dot6(tasseledCoeffs[1], v)
	case Wetness:
		sum = dot6(tasseledCoeffs[2], v)
	case Disturbance:
		sum = dot6(tasseledCoeffs[0], v) - dot6(tasseledCoeffs[1], v) - dot6(tasseledCoeffs[2], v)
	}
	return sum, true
}

func dot6(coeffs [6]float64, v []int16) float64 {
	var sum float64
	for i, c := range coeffs {
		sum += c * float64(v[i])
	}
	return sum
}
