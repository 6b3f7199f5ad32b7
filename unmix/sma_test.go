// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package unmix

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/eo-tsa/specidx/ard"
	"github.com/eo-tsa/specidx/internal/workerpool"
)

func twoEndmemberStack(x1, x2 int16) *ard.Stack {
	return &ard.Stack{
		N: 1,
		B: 2,
		Frames: []ard.Frame{{
			Bands: [][]int16{{x1}, {x2}},
			Mask:  []uint8{1},
		}},
	}
}

// An observation that is an exact 50/50 convex combination of two endmembers
// unmixes to a retained fraction of ~0.5 under positivity + sum-to-one.
func TestSMA_ConvexCombination(t *testing.T) {
	e := Endmembers{L: 2, M: 2, Data: []float64{0.1, 0.4, 0.5, 0.2}}
	stack := twoEndmemberStack(2500, 3500)
	params := Params{Positivity: true, SumToOne: true, SelectedEndmember: 1}

	pool := workerpool.New(2)
	defer pool.Close()

	tss := [][]int16{{0}}
	if err := Run(context.Background(), e, params, stack, nil, tss, nil, -9999, pool); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := math.Abs(float64(tss[0][0] - 5000)); diff > 2 {
		t.Errorf("SMA fraction = %d, want ~5000 (+-2)", tss[0][0])
	}
}

// Sum-to-one augmentation in unconstrained mode recovers the mixing weights
// of an exact convex combination.
func TestSMA_SumToOneUnconstrained(t *testing.T) {
	e := Endmembers{L: 2, M: 2, Data: []float64{0.1, 0.4, 0.5, 0.2}}
	stack := twoEndmemberStack(2500, 3500)
	params := Params{SumToOne: true, SelectedEndmember: 1}

	pool := workerpool.New(2)
	defer pool.Close()
	tss := [][]int16{{0}}
	if err := Run(context.Background(), e, params, stack, nil, tss, nil, -9999, pool); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// d1 should be ~0.5 -> scaled ~5000. d2 is not retained here, so this
	// test does not check the sum of the two fractions.
	if math.Abs(float64(tss[0][0])-5000) > 2 {
		t.Errorf("fraction endmember 1 = %d, want ~5000", tss[0][0])
	}
}

// Every converged NNLS component is non-negative.
func TestNNLS_NonNegative(t *testing.T) {
	ztzData := []float64{4, 1, 1, 3}
	ztxData := []float64{1, 2}
	m := 2
	sc := newScratch(2, m)
	ztz := mat.NewDense(m, m, ztzData)
	ztx := mat.NewVecDense(m, ztxData)

	d := nnls(ztz, ztx, m, sc)
	for i, v := range d {
		if v < -1e-9 {
			t.Errorf("d[%d] = %v, want >= 0", i, v)
		}
	}
}

// Shade normalization zeroes the shade fraction and rescales the rest to
// sum to 1.
func TestShadeNormalize(t *testing.T) {
	d := []float64{0.3, 0.3, 0.2} // shade = d[2] = 0.2, pre-shade non-shade sum = 0.6 != 1
	// Construct a case where non-shade sums to (1 - shade) exactly: 0.4+0.4+0.2=1.
	d = []float64{0.4, 0.4, 0.2}
	shadeNormalize(d, 3)
	if d[2] != 0 {
		t.Errorf("d[2] (shade) = %v, want 0", d[2])
	}
	sum := d[0] + d[1]
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("post-shade non-shade sum = %v, want 1", sum)
	}
}

// Repeated invocation on identical inputs produces identical outputs, even
// though the dynamic partition assigns pixels to workers nondeterministically.
func TestSMA_Deterministic(t *testing.T) {
	e := Endmembers{L: 3, M: 3, Data: []float64{
		0.1, 0.3, 0.2,
		0.4, 0.1, 0.3,
		0.2, 0.5, 0.4,
	}}
	stack := &ard.Stack{
		N: 1, B: 3,
		Frames: []ard.Frame{{
			Bands: [][]int16{{2200}, {2800}, {3100}},
			Mask:  []uint8{1},
		}},
	}
	params := Params{Positivity: true, SelectedEndmember: 2, EmitRMS: true}

	run := func() (int16, int16) {
		pool := workerpool.New(3)
		defer pool.Close()
		tss := [][]int16{{0}}
		rms := [][]int16{{0}}
		if err := Run(context.Background(), e, params, stack, nil, tss, rms, -9999, pool); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return tss[0][0], rms[0][0]
	}

	v1, r1 := run()
	v2, r2 := run()
	if v1 != v2 || r1 != r2 {
		t.Errorf("non-deterministic: (%d,%d) vs (%d,%d)", v1, r1, v2, r2)
	}
}

// A rejected frame mask forces nodata regardless of the band values.
func TestSMA_MaskDominance(t *testing.T) {
	e := Endmembers{L: 2, M: 2, Data: []float64{0.1, 0.4, 0.5, 0.2}}
	stack := &ard.Stack{
		N: 2, B: 2,
		Frames: []ard.Frame{{
			Bands: [][]int16{{2500, 2500}, {3500, 3500}},
			Mask:  []uint8{1, 0},
		}},
	}
	params := Params{Positivity: true, SelectedEndmember: 1}
	pool := workerpool.New(2)
	defer pool.Close()
	tss := [][]int16{{0, 0}}
	if err := Run(context.Background(), e, params, stack, nil, tss, nil, -9999, pool); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tss[0][1] != -9999 {
		t.Errorf("masked pixel = %d, want -9999", tss[0][1])
	}
}
