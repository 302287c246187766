// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 The edf authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Header record layout. All fields are ASCII, left-aligned and
// space-padded; values longer than their field are truncated.
//
//	1   magic byte ('0' for EDF, 0xFF for BDF)
//	7   version ("" for EDF, "BIOSEMI" for BDF)
//	80  patient identification
//	80  recording identification
//	8   start date, dd.mm.yy
//	8   start time, hh.mm.ss
//	8   number of bytes in the header record
//	44  reserved ("" for EDF, "24BIT" for BDF)
//	8   number of data records (-1 if unknown)
//	8   duration of a data record in seconds
//	4   number of signals (ns)
//
// followed by the signal fields, column-major (all labels, then all
// transducers, and so on):
//
//	ns*16 label, ns*80 transducer, ns*8 physical dimension,
//	ns*8 physical min, ns*8 physical max, ns*8 digital min,
//	ns*8 digital max, ns*80 prefiltering, ns*8 samples per record,
//	ns*32 reserved.

const (
	startDateLayout = "02.01.06"
	startTimeLayout = "15.04.05"
)

// MarshalHeader serializes a header into its fixed-width ASCII form.
// The header is validated first; no bytes are produced for an invalid
// configuration.
func MarshalHeader(hdr *Header) ([]byte, error) {
	if len(hdr.Signals) == 0 {
		return nil, ErrNoSignals
	}
	if hdr.RecordDuration <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrBadDuration, hdr.RecordDuration)
	}
	if err := validateSignals(hdr.Type, hdr.Signals); err != nil {
		return nil, err
	}

	buf := make([]byte, hdr.ByteSize())
	for i := range buf {
		buf[i] = ' '
	}
	off := 0
	put := func(width int, s string) {
		if len(s) > width {
			s = s[:width]
		}
		copy(buf[off:off+width], s)
		off += width
	}

	buf[0] = hdr.Type.firstByte()
	off = 1
	put(7, hdr.Type.versionTag())
	put(80, hdr.PatientID)
	put(80, hdr.RecordingID)
	put(8, hdr.StartTime.Format(startDateLayout))
	put(8, hdr.StartTime.Format(startTimeLayout))
	put(8, strconv.Itoa(hdr.ByteSize()))
	put(44, hdr.Type.reservedTag())
	put(8, strconv.Itoa(hdr.DataRecords))
	// Fixed six decimals with '.' as the separator, independent of the
	// host locale.
	put(8, strconv.FormatFloat(hdr.RecordDuration.Seconds(), 'f', 6, 64))
	put(4, strconv.Itoa(len(hdr.Signals)))

	for i := range hdr.Signals {
		put(16, hdr.Signals[i].Label)
	}
	for i := range hdr.Signals {
		put(80, hdr.Signals[i].TransducerType)
	}
	for i := range hdr.Signals {
		put(8, hdr.Signals[i].PhysicalDimension)
	}
	for i := range hdr.Signals {
		put(8, formatPhysicalValue(hdr.Signals[i].PhysicalMin))
	}
	for i := range hdr.Signals {
		put(8, formatPhysicalValue(hdr.Signals[i].PhysicalMax))
	}
	for i := range hdr.Signals {
		put(8, strconv.Itoa(hdr.Signals[i].DigitalMin))
	}
	for i := range hdr.Signals {
		put(8, strconv.Itoa(hdr.Signals[i].DigitalMax))
	}
	for i := range hdr.Signals {
		put(80, hdr.Signals[i].Prefiltering)
	}
	for i := range hdr.Signals {
		put(8, strconv.Itoa(hdr.Signals[i].SamplesPerRecord))
	}
	for i := range hdr.Signals {
		put(32, hdr.Signals[i].Reserved)
	}

	return buf, nil
}

// ParseHeader reads and validates a header record from r, leaving r
// positioned at the first data record.
func ParseHeader(r io.Reader) (*Header, error) {
	b := make([]byte, 256)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	hdr := &Header{}
	switch b[0] {
	case '0':
		hdr.Type = EDF16
	case 0xFF:
		hdr.Type = BDF24
	default:
		return nil, fmt.Errorf("%w: first byte 0x%02x", ErrUnknownFormat, b[0])
	}
	if version := strings.TrimSpace(string(b[1:8])); version != hdr.Type.versionTag() {
		return nil, fmt.Errorf("%w: version %q", ErrUnknownFormat, version)
	}

	hdr.PatientID = strings.TrimSpace(string(b[8:88]))
	hdr.RecordingID = strings.TrimSpace(string(b[88:168]))

	startDate, err := time.Parse(startDateLayout, strings.TrimSpace(string(b[168:176])))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTimestamp, err)
	}
	startTime, err := time.Parse(startTimeLayout, strings.TrimSpace(string(b[176:184])))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTimestamp, err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	// The header byte count at b[184:192] is derived from the signal
	// count; the stored value is ignored.

	hdr.DataRecords, err = strconv.Atoi(strings.TrimSpace(string(b[236:244])))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecordCount, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(b[244:252])), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDuration, err)
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("%w: %v seconds", ErrBadDuration, seconds)
	}
	hdr.RecordDuration = time.Duration(math.Round(seconds * float64(time.Second)))

	signalCount, err := strconv.Atoi(strings.TrimSpace(string(b[252:256])))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignalCount, err)
	}
	if signalCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSignalCount, signalCount)
	}

	hdr.Signals = make([]Signal, signalCount)
	column := func(width int, set func(i int, field string) error) error {
		b := make([]byte, width)
		for i := 0; i < signalCount; i++ {
			if _, err := io.ReadFull(r, b); err != nil {
				return fmt.Errorf("error reading signal headers: %w", err)
			}
			if err := set(i, strings.TrimSpace(string(b))); err != nil {
				return err
			}
		}
		return nil
	}

	if err := column(16, func(i int, field string) error {
		hdr.Signals[i].Label = field
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(80, func(i int, field string) error {
		hdr.Signals[i].TransducerType = field
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(8, func(i int, field string) error {
		hdr.Signals[i].PhysicalDimension = field
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(8, func(i int, field string) error {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("%w: signal %d physical min %q", ErrPhysicalRange, i, field)
		}
		hdr.Signals[i].PhysicalMin = v
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(8, func(i int, field string) error {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("%w: signal %d physical max %q", ErrPhysicalRange, i, field)
		}
		hdr.Signals[i].PhysicalMax = v
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(8, func(i int, field string) error {
		v, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("%w: signal %d digital min %q", ErrDigitalRange, i, field)
		}
		hdr.Signals[i].DigitalMin = v
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(8, func(i int, field string) error {
		v, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("%w: signal %d digital max %q", ErrDigitalRange, i, field)
		}
		hdr.Signals[i].DigitalMax = v
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(80, func(i int, field string) error {
		hdr.Signals[i].Prefiltering = field
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(8, func(i int, field string) error {
		v, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("%w: signal %d samples per record %q", ErrBadSampleCount, i, field)
		}
		hdr.Signals[i].SamplesPerRecord = v
		return nil
	}); err != nil {
		return nil, err
	}
	if err := column(32, func(i int, field string) error {
		hdr.Signals[i].Reserved = field
		return nil
	}); err != nil {
		return nil, err
	}

	if err := validateSignals(hdr.Type, hdr.Signals); err != nil {
		return nil, err
	}

	return hdr, nil
}

// validateSignals checks every signal's calibration bounds and sample
// count against the format's limits.
func validateSignals(typ FileType, signals []Signal) error {
	for i := range signals {
		if signals[i].PhysicalMax <= signals[i].PhysicalMin {
			return fmt.Errorf("%w: signal %d: physical max %v <= min %v",
				ErrPhysicalRange, i, signals[i].PhysicalMax, signals[i].PhysicalMin)
		}
	}
	for i := range signals {
		dmin, dmax := signals[i].DigitalMin, signals[i].DigitalMax
		if dmax <= dmin || dmin < typ.DigitalMin() || dmin >= typ.DigitalMax() ||
			dmax <= typ.DigitalMin() || dmax > typ.DigitalMax() {
			return fmt.Errorf("%w: signal %d: [%d, %d] outside %v [%d, %d]",
				ErrDigitalRange, i, dmin, dmax, typ, typ.DigitalMin(), typ.DigitalMax())
		}
	}
	for i := range signals {
		if signals[i].SamplesPerRecord <= 0 {
			return fmt.Errorf("%w: signal %d: %d", ErrBadSampleCount, i, signals[i].SamplesPerRecord)
		}
	}
	return nil
}

// formatPhysicalValue fits a calibration bound into its 8-character
// field, dropping the decimals when the value is too wide.
func formatPhysicalValue(val float64) string {
	s := strconv.FormatFloat(val, 'f', 2, 64)
	if len(s) > 8 {
		s = strconv.FormatFloat(val, 'f', 0, 64)
	}
	return s
}
