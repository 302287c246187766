// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 The edf authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import "math"

// Gain returns the linear calibration gain of the signal, the physical
// value of one digital step.
func (s *Signal) Gain() float64 {
	if s.DigitalMax == s.DigitalMin {
		return 0
	}
	return (s.PhysicalMax - s.PhysicalMin) / float64(s.DigitalMax-s.DigitalMin)
}

// Offset returns the linear calibration offset of the signal.
func (s *Signal) Offset() float64 {
	return s.PhysicalMin - float64(s.DigitalMin)*s.Gain()
}

// PhysicalToDigital converts a calibrated physical value to the raw
// digital value stored on disk, rounding half away from zero.
func (s *Signal) PhysicalToDigital(v float64) int {
	gain := s.Gain()
	if gain == 0 {
		return 0
	}
	return int(math.Round((v - s.Offset()) / gain))
}

// DigitalToPhysical converts a raw digital value to its calibrated
// physical value.
func (s *Signal) DigitalToPhysical(d int) float64 {
	return float64(d)*s.Gain() + s.Offset()
}
