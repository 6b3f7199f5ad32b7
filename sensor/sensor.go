// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package sensor resolves the semantic band roles the dispatcher's preset
// table is written in terms of (blue, nir, swir1, ...) to the concrete band
// index a particular ARD frame carries them at, plus the central wavelength
// a role was sampled at where the continuum-removal kernel needs it.
package sensor

// Role names a band by spectral/polarimetric semantics rather than by its
// position in a particular sensor's frame.
type Role int

const (
	Blue Role = iota
	Green
	Red
	NIR
	SWIR0
	SWIR1
	SWIR2
	BNIR
	RedEdge1
	RedEdge2
	RedEdge3
	VV
	VH
)

// String renders a Role for diagnostics and citation tokens.
func (r Role) String() string {
	switch r {
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Red:
		return "red"
	case NIR:
		return "nir"
	case SWIR0:
		return "swir0"
	case SWIR1:
		return "swir1"
	case SWIR2:
		return "swir2"
	case BNIR:
		return "bnir"
	case RedEdge1:
		return "rededge1"
	case RedEdge2:
		return "rededge2"
	case RedEdge3:
		return "rededge3"
	case VV:
		return "vv"
	case VH:
		return "vh"
	default:
		return "unknown"
	}
}

// Map is the sensor-specific binding of roles to band indices and, for roles
// the continuum-removal kernel needs, their central wavelength in micrometers.
type Map struct {
	Bands       map[Role]int
	Wavelengths map[Role]float64
}

// Band resolves a role to a band index. ok is false if the sensor map does
// not carry that role (e.g. a SAR sensor map with no SWIR roles).
func (m Map) Band(r Role) (int, bool) {
	idx, ok := m.Bands[r]
	return idx, ok
}

// Wavelength resolves a role's central wavelength. ok is false if the
// sensor map carries no wavelength for that role.
func (m Map) Wavelength(r Role) (float64, bool) {
	w, ok := m.Wavelengths[r]
	return w, ok
}
