// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import "testing"

// Interpolated baseline between (0.86, 2000) and (2.20, 1200) evaluated at
// 1.61 is 1552.238..., so the mid band 1600 leaves a difference of 47 after
// truncation.
func TestContinuumRemoval_Baseline(t *testing.T) {
	cr := NewContinuumRemoval(1.61, 0.86, 2.20)
	stack := singlePixelStack([]int16{1600}, []int16{2000}, []int16{1200}) // mid, left, right
	got := runOne(t, cr, []int{0, 1, 2}, stack, -9999, PolicyClamp)
	if got != 47 {
		t.Errorf("ContinuumRemoval = %d, want 47", got)
	}
}

func TestContinuumRemoval_ClampsOverflow(t *testing.T) {
	cr := NewContinuumRemoval(1.0, 0.5, 1.5)
	// left/right at zero: the baseline is 0, so the difference is mid and fits.
	stack := singlePixelStack([]int16{32000}, []int16{0}, []int16{0})
	got := runOne(t, cr, []int{0, 1, 2}, stack, -9999, PolicyClamp)
	if got != 32000 {
		t.Errorf("ContinuumRemoval = %d, want 32000 (no baseline offset, fits)", got)
	}

	// left/right at -32000: the difference 64000 overflows int16 and clamps.
	stack2 := singlePixelStack([]int16{32000}, []int16{-32000}, []int16{-32000})
	got2 := runOne(t, cr, []int{0, 1, 2}, stack2, -9999, PolicyClamp)
	if got2 != 32767 {
		t.Errorf("ContinuumRemoval = %d, want clamp to 32767", got2)
	}
}
