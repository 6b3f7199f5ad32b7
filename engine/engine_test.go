// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/eo-tsa/specidx/ard"
	"github.com/eo-tsa/specidx/dispatch"
	"github.com/eo-tsa/specidx/sensor"
	"github.com/eo-tsa/specidx/unmix"
)

func testSensor() sensor.Map {
	bands := make(map[sensor.Role]int)
	for r := sensor.Blue; r <= sensor.VH; r++ {
		bands[r] = int(r)
	}
	return sensor.Map{
		Bands: bands,
		Wavelengths: map[sensor.Role]float64{
			sensor.NIR:   0.86,
			sensor.SWIR1: 1.61,
			sensor.SWIR2: 2.20,
		},
	}
}

func testStack(nBands, nPixels int, val int16) *ard.Stack {
	bandPlanes := make([][]int16, nBands)
	mask := make([]uint8, nPixels)
	for b := range bandPlanes {
		plane := make([]int16, nPixels)
		for p := range plane {
			plane[p] = val + int16(b)
			mask[p] = 1
		}
		bandPlanes[b] = plane
	}
	return &ard.Stack{N: nPixels, B: nBands, Frames: []ard.Frame{{Bands: bandPlanes, Mask: mask}}}
}

func TestCompute_NDVIHappyPath(t *testing.T) {
	req := Request{
		Stack:  testStack(13, 2, 1000),
		Out:    &dispatch.Output{TSS: [][]int16{{0, 0}}},
		Index:  dispatch.NDVI,
		Nodata: -9999,
		Sensor: testSensor(),
	}
	outcome, err := Compute(context.Background(), req)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !outcome.Dispatched {
		t.Errorf("Dispatched = false, want true")
	}
	if req.Out.TSS[0][0] == -9999 {
		t.Errorf("NDVI produced nodata for a well-formed pixel")
	}
}

func TestCompute_UnknownIndex(t *testing.T) {
	req := Request{
		Stack:  testStack(13, 1, 1000),
		Out:    &dispatch.Output{TSS: [][]int16{{0}}},
		Index:  dispatch.IndexID("not-an-index"),
		Nodata: -9999,
		Sensor: testSensor(),
	}
	outcome, err := Compute(context.Background(), req)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if outcome.Dispatched {
		t.Errorf("Dispatched = true, want false for an unrecognized index")
	}
	if outcome.Diagnostic == "" {
		t.Errorf("Diagnostic is empty, want a message naming the unrecognized index")
	}
}

func TestCompute_SMAShapeMismatchPropagates(t *testing.T) {
	req := Request{
		Stack:      testStack(4, 1, 2000),
		Out:        &dispatch.Output{TSS: [][]int16{{0}}},
		Index:      dispatch.SMA,
		Nodata:     -9999,
		Sensor:     testSensor(),
		SMA:        &unmix.Params{Positivity: true, SelectedEndmember: 1},
		Endmembers: &unmix.Endmembers{L: 3, M: 2, Data: make([]float64, 6)},
	}
	_, err := Compute(context.Background(), req)
	if !errors.Is(err, dispatch.ErrShapeMismatch) {
		t.Fatalf("Compute: err = %v, want ErrShapeMismatch", err)
	}
}

func TestCompute_RepeatedCallsWithPrivatePools(t *testing.T) {
	req1 := Request{
		Stack:  testStack(13, 1, 1000),
		Out:    &dispatch.Output{TSS: [][]int16{{0}}},
		Index:  dispatch.NDVI,
		Nodata: -9999,
		Sensor: testSensor(),
	}
	if _, err := Compute(context.Background(), req1); err != nil {
		t.Fatalf("first Compute: %v", err)
	}
	// A second call reusing the same (private, per-call) pool configuration
	// must still succeed — Compute must not have left shared state closed.
	req2 := req1
	req2.Out = &dispatch.Output{TSS: [][]int16{{0}}}
	if _, err := Compute(context.Background(), req2); err != nil {
		t.Fatalf("second Compute: %v", err)
	}
}

func TestValidate_PanicsOnMismatchedOutputShape(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an output row count that does not match T")
		}
	}()
	req := Request{
		Stack:  testStack(13, 1, 1000),
		Out:    &dispatch.Output{TSS: [][]int16{{0}, {0}}}, // 2 rows, but stack has 1 date
		Index:  dispatch.NDVI,
		Nodata: -9999,
		Sensor: testSensor(),
	}
	Compute(context.Background(), req)
}

func TestValidate_PanicsOnMismatchedGlobalMaskLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a global mask length that does not match N")
		}
	}()
	req := Request{
		Stack:      testStack(13, 2, 1000),
		GlobalMask: []uint8{1}, // length 1, but stack has N=2
		Out:        &dispatch.Output{TSS: [][]int16{{0, 0}}},
		Index:      dispatch.NDVI,
		Nodata:     -9999,
		Sensor:     testSensor(),
	}
	Compute(context.Background(), req)
}
