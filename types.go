// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 The edf authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import "time"

// FileType selects one of the two format variants. It is chosen once
// per file and fixes the sample byte width and the digital value range.
type FileType int

const (
	// EDF16 is the European Data Format with 16-bit samples.
	EDF16 FileType = iota
	// BDF24 is the BioSemi variant with 24-bit samples.
	BDF24
)

// ByteWidth returns the on-disk width of one sample in bytes.
func (t FileType) ByteWidth() int {
	if t == BDF24 {
		return 3
	}
	return 2
}

// DigitalMin returns the smallest digital value representable in this
// format.
func (t FileType) DigitalMin() int {
	if t == BDF24 {
		return -8388608
	}
	return -32768
}

// DigitalMax returns the largest digital value representable in this
// format.
func (t FileType) DigitalMax() int {
	if t == BDF24 {
		return 8388607
	}
	return 32767
}

func (t FileType) String() string {
	if t == BDF24 {
		return "BDF"
	}
	return "EDF"
}

// firstByte is the magic byte opening the header.
func (t FileType) firstByte() byte {
	if t == BDF24 {
		return 0xFF
	}
	return '0'
}

// versionTag is the 7-byte version field following the magic byte.
func (t FileType) versionTag() string {
	if t == BDF24 {
		return "BIOSEMI"
	}
	return ""
}

// reservedTag is the value of the 44-byte reserved header field.
func (t FileType) reservedTag() string {
	if t == BDF24 {
		return "24BIT"
	}
	return ""
}

// Signal describes one measuring channel: its labelling, its physical
// and digital calibration bounds, and its per-record sample count.
type Signal struct {
	Label             string  // Label of the signal (e.g., EEG Fpz-Cz)
	TransducerType    string  // Type of transducer used
	PhysicalDimension string  // Physical dimension (e.g., uV, mV)
	PhysicalMin       float64 // Minimum physical value
	PhysicalMax       float64 // Maximum physical value
	DigitalMin        int     // Minimum digital value
	DigitalMax        int     // Maximum digital value
	Prefiltering      string  // Pre-filtering information
	SamplesPerRecord  int     // Number of samples in each data record for this signal
	Reserved          string  // Reserved for future use
}

// Header describes a whole recording: the format variant, the
// recording metadata, and the ordered list of signals. The record
// layout (record length, header size) is derived from it.
type Header struct {
	Type           FileType      // Format variant (EDF16 or BDF24)
	PatientID      string        // Identification of the patient
	RecordingID    string        // Identification of the recording session
	StartTime      time.Time     // Start of the recording; zero value means unset
	RecordDuration time.Duration // Duration of a single data record
	DataRecords    int           // Number of data records, -1 if unknown
	Signals        []Signal      // Details of each signal
}

// SignalCount returns the number of signals in each data record.
func (h *Header) SignalCount() int {
	return len(h.Signals)
}

// RecordLength returns the total number of samples in one data record,
// summed over all signals.
func (h *Header) RecordLength() int {
	n := 0
	for i := range h.Signals {
		n += h.Signals[i].SamplesPerRecord
	}
	return n
}

// ByteSize returns the size of the header record in bytes.
func (h *Header) ByteSize() int {
	return 256 * (1 + len(h.Signals))
}

// recordBytes is the on-disk size of one data record.
func (h *Header) recordBytes() int {
	return h.RecordLength() * h.Type.ByteWidth()
}

// SampleRate returns the sample rate of the given signal in Hz.
func (h *Header) SampleRate(signal int) float64 {
	return float64(h.Signals[signal].SamplesPerRecord) / h.RecordDuration.Seconds()
}

// signalOffsets returns the sample offset of each signal's block within
// a data record.
func (h *Header) signalOffsets() []int {
	offsets := make([]int, len(h.Signals))
	n := 0
	for i := range h.Signals {
		offsets[i] = n
		n += h.Signals[i].SamplesPerRecord
	}
	return offsets
}

// signalAt maps a 0-based global sample index to the signal it belongs
// to, given the channel-major layout of a data record.
func (h *Header) signalAt(n int64) int {
	p := int(n % int64(h.RecordLength()))
	for i := range h.Signals {
		if p < h.Signals[i].SamplesPerRecord {
			return i
		}
		p -= h.Signals[i].SamplesPerRecord
	}
	return len(h.Signals) - 1
}

// clone returns a deep copy. Every component that accepts a Header
// keeps its own clone, so later mutation by the caller cannot corrupt
// in-flight state.
func (h *Header) clone() *Header {
	c := *h
	c.Signals = make([]Signal, len(h.Signals))
	copy(c.Signals, h.Signals)
	return &c
}
