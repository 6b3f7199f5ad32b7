// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package unmix implements the Spectral Mixture Analysis (SMA) kernel:
// per-pixel linear unmixing against an endmember matrix, optionally
// non-negativity-constrained (Lawson-Hanson NNLS), optionally sum-to-one
// augmented, with optional shade normalization and residual RMSE.
package unmix

// Endmembers is the L x M endmember matrix: L spectral bands (L must equal
// the ARD stack's band count B) by M endmembers, row-major, reflectance-
// scaled to [0, 1].
type Endmembers struct {
	L, M int
	Data []float64
}

// Params bundles the SMA-specific parameters.
type Params struct {
	Positivity        bool
	SumToOne          bool
	ShadeNormalize    bool
	EmitRMS           bool
	SelectedEndmember int // 1-based index into [1, M]
}
