// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package kernel

// ContinuumRemoval subtracts a linearly-interpolated baseline, taken between
// two bracketing bands at known wavelengths, from a central band.
//
// Inputs are [mid, left, right] band values in that order. The interpolation
// weights depend only on the three wavelengths, which are fixed for the
// lifetime of a Compute call, so they are precomputed once in NewContinuumRemoval
// rather than recomputed per pixel.
type ContinuumRemoval struct {
	wLeft, wRight float64 // interpolation weights for b_left, b_right
}

// NewContinuumRemoval precomputes the linear-interpolation weights for a
// baseline between (wLeft, bLeft) and (wRight, bRight) evaluated at wMid.
func NewContinuumRemoval(wMid, wLeft, wRight float64) ContinuumRemoval {
	span := wRight - wLeft
	return ContinuumRemoval{
		wLeft:  (wRight - wMid) / span,
		wRight: (wMid - wLeft) / span,
	}
}

func (ContinuumRemoval) NumInputs() int { return 3 }

func (c ContinuumRemoval) Eval(v []int16) (float64, bool) {
	mid, left, right := float64(v[0]), float64(v[1]), float64(v[2])
	baseline := c.wLeft*left + c.wRight*right
	return mid - baseline, true
}
