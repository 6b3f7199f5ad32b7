// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import "math"

// BandCopy passes a single band through unchanged, subject only to the
// frame/global mask logic Run applies.
type BandCopy struct{}

func (BandCopy) NumInputs() int { return 1 }

func (BandCopy) Eval(v []int16) (float64, bool) {
	return float64(v[0]), true
}

// NormDiff computes the normalized difference (b1-b2)/(b1+b2), scaled by
// ReflectanceScale. Invalid when the sum is zero or the ratio falls outside
// [-1, 1].
type NormDiff struct{}

func (NormDiff) NumInputs() int { return 2 }

func (NormDiff) Eval(v []int16) (float64, bool) {
	b1, b2 := float64(v[0]), float64(v[1])
	s := b1 + b2
	if s == 0 {
		return 0, false
	}
	d := b1 - b2
	ratio := d / s
	if ratio < -1 || ratio > 1 {
		return 0, false
	}
	return ratio * ReflectanceScale, true
}

// RatioMinusOne computes ((b1/b2) - 1), scaled by RatioScale. Invalid when
// b2 is zero.
type RatioMinusOne struct{}

func (RatioMinusOne) NumInputs() int { return 2 }

func (RatioMinusOne) Eval(v []int16) (float64, bool) {
	b1, b2 := float64(v[0]), float64(v[1])
	if b2 == 0 {
		return 0, false
	}
	return (b1/b2 - 1) * RatioScale, true
}

// MSRLike computes the modified-simple-ratio family ((r-1)/sqrt(r+1)) with
// r = b1/b2, scaled by ReflectanceScale. Invalid when b2 is zero or r+1 is
// not strictly positive.
type MSRLike struct{}

func (MSRLike) NumInputs() int { return 2 }

func (MSRLike) Eval(v []int16) (float64, bool) {
	b1, b2 := float64(v[0]), float64(v[1])
	if b2 == 0 {
		return 0, false
	}
	r := b1 / b2
	if r+1 <= 0 {
		return 0, false
	}
	return (r - 1) / math.Sqrt(r+1) * ReflectanceScale, true
}

// KernelNDVI computes the RBF-kernelized NDVI variant. Invalid unless both
// bands are strictly positive.
type KernelNDVI struct{}

func (KernelNDVI) NumInputs() int { return 2 }

func (KernelNDVI) Eval(v []int16) (float64, bool) {
	b1, b2 := float64(v[0]), float64(v[1])
	if b1 <= 0 || b2 <= 0 {
		return 0, false
	}
	sigma := 0.5 * (b1 + b2)
	delta := b1 - b2
	k := math.Exp(-(delta * delta) / (2 * sigma * sigma))
	return (1 - k) / (1 + k) * ReflectanceScale, true
}

// Resistance computes the soil/atmosphere-resistance index family (EVI,
// EV2, ARVI, SAVI, SARVI, ...): a fixed-coefficient combination of nir, red,
// blue with an optional red-band-correction (RBC) substitution. Invalid
// only when the denominator is exactly zero; out-of-[-1,1] results pass
// through, so EVI and friends can produce out-of-physical-range shorts.
//
// Inputs are [nir, red, blue] in that order.
type Resistance struct {
	F1, F2, F3, F4 float64
	RBC            bool
}

func (Resistance) NumInputs() int { return 3 }

func (r Resistance) Eval(v []int16) (float64, bool) {
	nir, red, blue := float64(v[0]), float64(v[1]), float64(v[2])
	if r.RBC {
		red = 2*red - blue
	}
	d := nir + r.F2*red - r.F3*blue + r.F4*ReflectanceScale
	if d == 0 {
		return 0, false
	}
	return r.F1 * (nir - red) / d * ReflectanceScale, true
}

// Preset resistance-family parameter tuples.
var (
	EVI   = Resistance{F1: 2.5, F2: 6.0, F3: 7.5, F4: 1.0, RBC: false}
	EV2   = Resistance{F1: 2.4, F2: 1.0, F3: 0.0, F4: 1.0, RBC: false}
	ARVI  = Resistance{F1: 1.0, F2: 1.0, F3: 0.0, F4: 0.0, RBC: true}
	SAVI  = Resistance{F1: 1.5, F2: 1.0, F3: 0.0, F4: 0.5, RBC: false}
	SARVI = Resistance{F1: 1.5, F2: 1.0, F3: 0.0, F4: 0.5, RBC: true}
)
