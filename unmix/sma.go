// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package unmix

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/eo-tsa/specidx/ard"
	"github.com/eo-tsa/specidx/internal/workerpool"
)

// ReflectanceScale matches kernel.ReflectanceScale; duplicated here rather
// than imported because unmix must not depend on kernel — neither imports
// the other, and the dispatcher is the sole place that wires kernels together.
const ReflectanceScale = 10000.0

// pixelBatch is the claim granularity for SMA's dynamic partition. The NNLS
// inner loop has wide runtime variance across pixels; a small batch keeps
// load balancing close to per-pixel hand-out while amortizing the
// atomic-counter cost across more than one pixel.
const pixelBatch = 64

// Run solves the linear unmixing problem at every valid (date, pixel) cell
// and writes the retained fraction into tss, and (when params.EmitRMS) the
// residual RMSE into rms. rms may be nil when residuals were not requested.
func Run(ctx context.Context, endmembers Endmembers, params Params, stack *ard.Stack, globalMask []uint8, tss, rms [][]int16, nodata int16, pool *workerpool.Pool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := endmembers.M
	effL := endmembers.L
	if params.SumToOne {
		effL++
	}

	z := buildAugmented(endmembers, params.SumToOne)
	ztz := mat.NewDense(m, m, nil)
	ztz.Mul(z.T(), z)

	n := stack.N
	t := stack.T()

	// One scratch per worker slot, created lazily the first time a pool
	// goroutine claims a batch and reused for every batch that goroutine
	// claims afterwards. Slots are never shared between goroutines within
	// one call, so no synchronization is needed.
	scratches := make([]*scratch, pool.NumWorkers())

	pool.ParallelForAtomicBatchedWorker(n, pixelBatch, func(worker, start, end int) {
		sc := scratches[worker]
		if sc == nil {
			sc = newScratch(effL, m)
			scratches[worker] = sc
		}
		for p := start; p < end; p++ {
			if globalMask != nil && globalMask[p] == 0 {
				writeNodata(tss, rms, p, t, nodata)
				continue
			}
			for d := 0; d < t; d++ {
				frame := stack.Frames[d]
				if frame.Mask[p] == 0 {
					tss[d][p] = nodata
					if rms != nil {
						rms[d][p] = nodata
					}
					continue
				}

				fillObservation(sc.x, frame, p, endmembers.L, params.SumToOne)
				sc.ztx.MulVec(z.T(), sc.x)

				var frac []float64
				if params.Positivity {
					frac = nnls(ztz, sc.ztx, m, sc)
				} else {
					frac = unconstrained(ztz, sc.ztx, sc)
				}

				if params.EmitRMS && rms != nil {
					sumSq := residualSumSq(z, frac, sc.x, effL, m)
					rms[d][p] = scaleRMSE(sumSq, effL, nodata)
				}

				if params.ShadeNormalize {
					shadeNormalize(frac, m)
				}

				sel := params.SelectedEndmember - 1
				tss[d][p] = scaleFraction(frac[sel], nodata)
			}
		}
	})
	return nil
}

func writeNodata(tss, rms [][]int16, p, t int, nodata int16) {
	for d := 0; d < t; d++ {
		tss[d][p] = nodata
		if rms != nil {
			rms[d][p] = nodata
		}
	}
}

// buildAugmented row-augments the endmember matrix with an all-ones row when
// sum-to-one is set.
func buildAugmented(e Endmembers, sumToOne bool) *mat.Dense {
	effL := e.L
	if sumToOne {
		effL++
	}
	data := make([]float64, effL*e.M)
	copy(data[:e.L*e.M], e.Data)
	if sumToOne {
		for j := 0; j < e.M; j++ {
			data[e.L*e.M+j] = 1
		}
	}
	return mat.NewDense(effL, e.M, data)
}

// fillObservation fills x with the reflectance-scaled observation vector for
// pixel p at the given frame: x[i] = band[i][p] / ReflectanceScale for
// i < L, and x[L] = 1 when sum-to-one augmentation is active.
func fillObservation(x *mat.VecDense, frame ard.Frame, p, l int, sumToOne bool) {
	for i := 0; i < l; i++ {
		x.SetVec(i, float64(frame.Bands[i][p])/ReflectanceScale)
	}
	if sumToOne {
		x.SetVec(l, 1)
	}
}

// residualSumSq computes sum((x - Z d)^2) over the (possibly augmented) L
// rows.
func residualSumSq(z *mat.Dense, d []float64, x *mat.VecDense, effL, m int) float64 {
	var sumSq float64
	for i := 0; i < effL; i++ {
		var zd float64
		for j := 0; j < m; j++ {
			zd += z.At(i, j) * d[j]
		}
		r := x.AtVec(i) - zd
		sumSq += r * r
	}
	return sumSq
}

func scaleRMSE(sumSq float64, effL int, nodata int16) int16 {
	rms := math.Sqrt(sumSq/float64(effL)) * ReflectanceScale
	return roundToInt16(rms, nodata)
}

// shadeNormalize treats the last endmember as shade: non-shade fractions are
// divided by (1 - shade) and the shade fraction is zeroed, so the non-shade
// fractions sum to 1 whenever all M fractions summed to 1 beforehand.
func shadeNormalize(d []float64, m int) {
	f := 1 / (1 - d[m-1])
	for i := 0; i < m-1; i++ {
		d[i] *= f
	}
	d[m-1] = 0
}

func scaleFraction(frac float64, nodata int16) int16 {
	return roundToInt16(frac*ReflectanceScale, nodata)
}

// roundToInt16 rounds to nearest — fractions and RMSE round, unlike the
// truncating scalar-kernel family — and falls back to nodata for a
// non-finite or out-of-range result.
func roundToInt16(v float64, nodata int16) int16 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nodata
	}
	r := math.Round(v)
	if r < math.MinInt16 || r > math.MaxInt16 {
		return nodata
	}
	return int16(r)
}
