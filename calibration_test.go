// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 The edf authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf_test

import (
	"testing"

	"github.com/biorec/edf"
	"github.com/stretchr/testify/assert"
)

func TestCalibrationBounds(t *testing.T) {
	sig := edf.Signal{
		PhysicalMin: -500,
		PhysicalMax: 500,
		DigitalMin:  -2048,
		DigitalMax:  2047,
	}

	assert.Equal(t, -2048, sig.PhysicalToDigital(-500))
	assert.Equal(t, 2047, sig.PhysicalToDigital(500))
	assert.InDelta(t, -500, sig.DigitalToPhysical(-2048), 1e-9)
	assert.InDelta(t, 500, sig.DigitalToPhysical(2047), 1e-9)
}

func TestCalibrationInvertibility(t *testing.T) {
	signals := []edf.Signal{
		{PhysicalMin: -500, PhysicalMax: 500, DigitalMin: -2048, DigitalMax: 2047},
		{PhysicalMin: 34, PhysicalMax: 40, DigitalMin: -1024, DigitalMax: 1023},
		{PhysicalMin: -1, PhysicalMax: 1, DigitalMin: -8388608, DigitalMax: 8388607},
	}

	for i, sig := range signals {
		gain := sig.Gain()
		span := sig.PhysicalMax - sig.PhysicalMin
		for j := 0; j <= 100; j++ {
			v := sig.PhysicalMin + span*float64(j)/100
			back := sig.DigitalToPhysical(sig.PhysicalToDigital(v))
			// Within one digital quantization step of the original.
			assert.InDelta(t, v, back, gain, "signal %d value %v", i, v)
		}
	}
}

func TestCalibrationRounding(t *testing.T) {
	// Unit gain, zero offset: conversion rounds half away from zero.
	sig := edf.Signal{
		PhysicalMin: -1000,
		PhysicalMax: 1000,
		DigitalMin:  -1000,
		DigitalMax:  1000,
	}
	assert.InDelta(t, 1.0, sig.Gain(), 1e-12)
	assert.Equal(t, 3, sig.PhysicalToDigital(2.5))
	assert.Equal(t, -3, sig.PhysicalToDigital(-2.5))
	assert.Equal(t, 2, sig.PhysicalToDigital(2.4))
}
