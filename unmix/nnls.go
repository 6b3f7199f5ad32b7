// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package unmix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// sentinel marks an index that is not a candidate for the min-ratio step.
// math.MaxFloat64 cannot itself be chosen as the minimum unless every
// candidate is excluded, in which case alpha stays at the sentinel; that case
// is unreachable because the inner loop is only entered once at least one
// passive index has s[i] <= tol.
const sentinel = math.MaxFloat64

// scratch holds the per-worker working state the SMA kernel reuses across
// every pixel a worker goroutine is handed. Sub-system buffers are sized to
// the worst case (M x M) once and operated on through logical sub-ranges on
// every active-set change, so an active-set resize never reallocates them;
// only the small mat.Dense/mat.VecDense wrappers around them are rebuilt.
type scratch struct {
	x    *mat.VecDense // length effL
	ztx  *mat.VecDense // length M
	dVec *mat.VecDense // view over d, for the unconstrained solve

	d, s, w, a []float64 // length M
	passive    []bool    // length M

	idxBuf []int     // passive-index scratch, len <= M
	subZtZ []float64 // backing array, len M*M
	subZtx []float64 // backing array, len M
	subSol []float64 // backing array, len M
}

func newScratch(effL, m int) *scratch {
	sc := &scratch{
		x:       mat.NewVecDense(effL, nil),
		ztx:     mat.NewVecDense(m, nil),
		d:       make([]float64, m),
		s:       make([]float64, m),
		w:       make([]float64, m),
		a:       make([]float64, m),
		passive: make([]bool, m),
		idxBuf:  make([]int, 0, m),
		subZtZ:  make([]float64, m*m),
		subZtx:  make([]float64, m),
		subSol:  make([]float64, m),
	}
	sc.dVec = mat.NewVecDense(m, sc.d)
	return sc
}

// unconstrained solves ZtZ d = Ztx once via gonum's LU-backed SolveVec,
// equivalent to d = ZtZ^-1 Ztx.
func unconstrained(ztz *mat.Dense, ztx *mat.VecDense, sc *scratch) []float64 {
	if err := sc.dVec.SolveVec(ztz, ztx); err != nil {
		// A numerically singular system has no usable solution, and a failed
		// solve may leave the destination untouched; since scratch is reused
		// across pixels, poison it so a degenerate pixel becomes nodata
		// instead of inheriting the previous pixel's solution.
		for i := range sc.d {
			sc.d[i] = math.NaN()
		}
	}
	return sc.d
}

// nnls solves the non-negativity-constrained problem by Lawson-Hanson
// active-set iteration: P is the passive (candidate, possibly-positive) set,
// R the active set held at zero. Non-convergence is not an error — the
// caller receives the best d found when the iteration cap is reached.
func nnls(ztz *mat.Dense, ztx *mat.VecDense, m int, sc *scratch) []float64 {
	tol := math.SmallestNonzeroFloat64
	itmax := 30 * m

	d, s, w, a := sc.d, sc.s, sc.w, sc.a
	passive := sc.passive
	for i := range passive {
		passive[i] = false
		d[i] = 0
		s[i] = 0
	}

	computeW := func() {
		for i := 0; i < m; i++ {
			var sum float64
			for j := 0; j < m; j++ {
				sum += ztz.At(i, j) * d[j]
			}
			w[i] = ztx.AtVec(i) - sum
		}
	}
	computeW()

	iter := 0
	for {
		mIdx, maxW := -1, tol
		for i := 0; i < m; i++ {
			if !passive[i] && w[i] > maxW {
				maxW, mIdx = w[i], i
			}
		}
		if mIdx < 0 {
			break // R is empty of candidates, or max(w) <= tol
		}
		passive[mIdx] = true

		solvePassive(ztz, ztx, passive, m, s, sc)

		for minOverPassive(s, passive, m) <= 0 && iter < itmax {
			iter++
			for i := 0; i < m; i++ {
				if passive[i] && s[i] <= tol {
					a[i] = d[i] / (d[i] - s[i])
				} else {
					a[i] = sentinel
				}
			}
			alpha := sentinel
			for i := 0; i < m; i++ {
				if a[i] < alpha {
					alpha = a[i]
				}
			}
			for i := 0; i < m; i++ {
				d[i] += alpha * (s[i] - d[i])
			}
			for i := 0; i < m; i++ {
				if passive[i] && math.Abs(d[i]) < tol {
					passive[i] = false
				}
			}
			solvePassive(ztz, ztx, passive, m, s, sc)
		}
		copy(d, s)
		if iter >= itmax {
			break
		}

		computeW()
		for i := 0; i < m; i++ {
			if passive[i] {
				w[i] = -1
			}
		}
	}
	return d
}

// minOverPassive returns the smallest s[i] among passive indices, or
// +sentinel if P is empty (so the inner-loop condition "min(s over P) <= 0"
// reads false and the caller does not iterate against an empty set).
func minOverPassive(s []float64, passive []bool, m int) float64 {
	min := sentinel
	for i := 0; i < m; i++ {
		if passive[i] && s[i] < min {
			min = s[i]
		}
	}
	return min
}

// solvePassive forms ZtZ_P and Ztx_P by gathering the rows/columns named by
// passive, solves ZtZ_P s_P = Ztx_P via LU, and scatters s_P back into s,
// zeroing every position in R.
func solvePassive(ztz *mat.Dense, ztx *mat.VecDense, passive []bool, m int, s []float64, sc *scratch) {
	idx := sc.idxBuf[:0]
	for i := 0; i < m; i++ {
		if passive[i] {
			idx = append(idx, i)
		}
	}
	for i := range s {
		s[i] = 0
	}
	p := len(idx)
	if p == 0 {
		return
	}

	subZtZ := sc.subZtZ[:p*p]
	subZtx := sc.subZtx[:p]
	for r, ri := range idx {
		for c, ci := range idx {
			subZtZ[r*p+c] = ztz.At(ri, ci)
		}
		subZtx[r] = ztx.AtVec(ri)
	}

	a := mat.NewDense(p, p, subZtZ)
	b := mat.NewVecDense(p, subZtx)
	sol := mat.NewVecDense(p, sc.subSol[:p])
	if err := sol.SolveVec(a, b); err != nil {
		// Same poisoning rationale as unconstrained: never scatter a stale
		// previous-pixel solution out of reused scratch. NaN stalls the
		// active-set iteration (every comparison reads false) and the pixel
		// resolves to nodata.
		for i := 0; i < p; i++ {
			sc.subSol[i] = math.NaN()
		}
	}

	for r, ri := range idx {
		s[ri] = sol.AtVec(r)
	}
}
