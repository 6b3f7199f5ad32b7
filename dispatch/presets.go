// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/eo-tsa/specidx/kernel"
	"github.com/eo-tsa/specidx/sensor"
)

// Preset index identifiers.
const (
	NDVI     IndexID = "NDVI"
	NBR      IndexID = "NBR"
	NDBI     IndexID = "NDBI"
	NDWI     IndexID = "NDWI"
	MNDWI    IndexID = "MNDWI"
	NDSI     IndexID = "NDSI"
	NDTI     IndexID = "NDTI"
	NDMI     IndexID = "NDMI"
	NDRE1    IndexID = "NDRE1"
	NDRE2    IndexID = "NDRE2"
	NDVIre1  IndexID = "NDVIre1"
	NDVIre2  IndexID = "NDVIre2"
	NDVIre3  IndexID = "NDVIre3"
	NDVIre1n IndexID = "NDVIre1n"
	NDVIre2n IndexID = "NDVIre2n"
	NDVIre3n IndexID = "NDVIre3n"
	CCI      IndexID = "CCI"
	CIre     IndexID = "CIre"
	MSRre    IndexID = "MSRre"
	MSRren   IndexID = "MSRren"
	KNDVI    IndexID = "kNDVI"
	EVI      IndexID = "EVI"
	EV2      IndexID = "EV2"
	ARVI     IndexID = "ARVI"
	SAVI     IndexID = "SAVI"
	SARVI    IndexID = "SARVI"
	TCB      IndexID = "TCB"
	TCG      IndexID = "TCG"
	TCW      IndexID = "TCW"
	TCD      IndexID = "TCD"
	CSW      IndexID = "CSW"
	SMA      IndexID = "SMA"
)

// bandCopyPrefix namespaces the dynamically-constructed band-copy index IDs.
const bandCopyPrefix = "BAND:"

// Band builds the IndexID for a pass-through band-copy index over role r.
func Band(r sensor.Role) IndexID {
	return IndexID(bandCopyPrefix + r.String())
}

// resolve looks up id in the preset table, resolves its band roles through
// d.Sensor, and fills in the literal parameters for the resistance/MSR/
// Tasseled Cap families. ok is false for an id the table has no case for.
func (d Dispatcher) resolve(id IndexID) (Binding, bool) {
	if len(id) > len(bandCopyPrefix) && string(id[:len(bandCopyPrefix)]) == bandCopyPrefix {
		for r := sensor.Blue; r <= sensor.VH; r++ {
			if id == Band(r) {
				return Binding{
					Kind:     KindBand,
					BandIdx:  []int{d.band(r)},
					Scalar:   kernel.BandCopy{},
					Citation: string(id),
				}, true
			}
		}
		return Binding{}, false
	}

	switch id {
	case NDVI:
		return d.normDiff(id, sensor.NIR, sensor.Red), true
	case NBR:
		return d.normDiff(id, sensor.NIR, sensor.SWIR2), true
	case NDBI:
		return d.normDiff(id, sensor.SWIR1, sensor.NIR), true
	case NDWI:
		return d.normDiff(id, sensor.Green, sensor.NIR), true
	case MNDWI:
		return d.normDiff(id, sensor.Green, sensor.SWIR1), true
	case NDSI:
		return d.normDiff(id, sensor.Green, sensor.SWIR1), true
	case NDTI:
		return d.normDiff(id, sensor.SWIR1, sensor.SWIR2), true
	case NDMI:
		return d.normDiff(id, sensor.NIR, sensor.SWIR1), true
	case NDRE1:
		return d.normDiff(id, sensor.RedEdge2, sensor.RedEdge1), true
	case NDRE2:
		return d.normDiff(id, sensor.RedEdge3, sensor.RedEdge1), true
	case NDVIre1:
		return d.normDiff(id, sensor.BNIR, sensor.RedEdge1), true
	case NDVIre2:
		return d.normDiff(id, sensor.BNIR, sensor.RedEdge2), true
	case NDVIre3:
		return d.normDiff(id, sensor.BNIR, sensor.RedEdge3), true
	case NDVIre1n:
		return d.normDiff(id, sensor.NIR, sensor.RedEdge1), true
	case NDVIre2n:
		return d.normDiff(id, sensor.NIR, sensor.RedEdge2), true
	case NDVIre3n:
		return d.normDiff(id, sensor.NIR, sensor.RedEdge3), true
	case CCI:
		return d.normDiff(id, sensor.Green, sensor.Red), true

	case CIre:
		return Binding{
			Kind:     KindRatioMinusOne,
			BandIdx:  []int{d.band(sensor.RedEdge3), d.band(sensor.RedEdge1)},
			Scalar:   kernel.RatioMinusOne{},
			Citation: string(id),
		}, true

	case MSRre:
		return Binding{
			Kind:     KindMSR,
			BandIdx:  []int{d.band(sensor.BNIR), d.band(sensor.RedEdge1)},
			Scalar:   kernel.MSRLike{},
			Citation: string(id),
		}, true
	case MSRren:
		return Binding{
			Kind:     KindMSR,
			BandIdx:  []int{d.band(sensor.NIR), d.band(sensor.RedEdge1)},
			Scalar:   kernel.MSRLike{},
			Citation: string(id),
		}, true

	case KNDVI:
		return Binding{
			Kind:     KindKernelNDVI,
			BandIdx:  []int{d.band(sensor.NIR), d.band(sensor.Red)},
			Scalar:   kernel.KernelNDVI{},
			Citation: string(id),
		}, true

	case EVI:
		return d.resistance(id, kernel.EVI, sensor.NIR, sensor.Red, sensor.Blue), true
	case EV2:
		return d.resistance(id, kernel.EV2, sensor.NIR, sensor.Red, sensor.Red), true
	case ARVI:
		return d.resistance(id, kernel.ARVI, sensor.NIR, sensor.Red, sensor.Blue), true
	case SAVI:
		return d.resistance(id, kernel.SAVI, sensor.NIR, sensor.Red, sensor.Blue), true
	case SARVI:
		return d.resistance(id, kernel.SARVI, sensor.NIR, sensor.Red, sensor.Blue), true

	case TCB:
		return d.tasseled(id, kernel.Brightness), true
	case TCG:
		return d.tasseled(id, kernel.Greenness), true
	case TCW:
		return d.tasseled(id, kernel.Wetness), true
	case TCD:
		return d.tasseled(id, kernel.Disturbance), true

	case CSW:
		nir, swir2 := d.wavelength(sensor.NIR), d.wavelength(sensor.SWIR2)
		swir1 := d.wavelength(sensor.SWIR1)
		return Binding{
			Kind:     KindContinuum,
			BandIdx:  []int{d.band(sensor.SWIR1), d.band(sensor.NIR), d.band(sensor.SWIR2)},
			Scalar:   kernel.NewContinuumRemoval(swir1, nir, swir2),
			Citation: string(id),
		}, true

	case SMA:
		return Binding{Kind: KindSMA, Citation: string(id)}, true

	default:
		return Binding{}, false
	}
}

func (d Dispatcher) normDiff(id IndexID, b1, b2 sensor.Role) Binding {
	return Binding{
		Kind:     KindNormDiff,
		BandIdx:  []int{d.band(b1), d.band(b2)},
		Scalar:   kernel.NormDiff{},
		Citation: string(id),
	}
}

func (d Dispatcher) resistance(id IndexID, preset kernel.Resistance, nir, red, blue sensor.Role) Binding {
	return Binding{
		Kind:     KindResistance,
		BandIdx:  []int{d.band(nir), d.band(red), d.band(blue)},
		Scalar:   preset,
		Citation: string(id),
	}
}

func (d Dispatcher) tasseled(id IndexID, component kernel.TasseledComponent) Binding {
	return Binding{
		Kind:     KindTasseled,
		BandIdx:  []int{d.band(sensor.Blue), d.band(sensor.Green), d.band(sensor.Red), d.band(sensor.NIR), d.band(sensor.SWIR1), d.band(sensor.SWIR2)},
		Tasseled: kernel.Tasseled{Component: component},
		Citation: string(id),
	}
}
