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
	"sync"
	"time"
)

// SampleWriter is the streaming write side of a recording. It is
// implemented by the terminal Writer and by every stream filter, so
// filters can be chained in front of a file.
type SampleWriter interface {
	// Open validates the header and readies the writer. The writer
	// keeps a private copy; later mutation of hdr by the caller has no
	// effect.
	Open(hdr Header) error
	// WriteDigitalSamples appends raw digital samples to the stream.
	WriteDigitalSamples(samples []int) error
	// WritePhysicalSamples appends calibrated physical samples to the
	// stream, converting each to its signal's digital value.
	WritePhysicalSamples(values []float64) error
	// Close finalizes the stream. It is idempotent.
	Close() error
}

// As recommended by the EDF standard.
const maxRecordBytes = 61440

// Writer writes EDF/BDF files sample by sample.
//
// Samples are buffered into complete data records and each record is
// written to the sink as soon as it fills. The header is written on
// the first sample write (so an auto-assigned start time is captured
// close to first data arrival) and rewritten with the final record
// count on Close.
type Writer struct {
	mu sync.Mutex
	w  io.WriteSeeker

	hdr     *Header
	buf     []int  // current record accumulator
	off     int    // fill offset within buf
	scratch []byte // packed record bytes

	written int64 // digital samples accepted so far
	records int   // complete records written

	headerOut       bool
	computeDuration bool
	flushPartial    bool
	firstWrite      time.Time
	lastWrite       time.Time

	opened bool
	closed bool
}

// NewWriter returns an unopened writer over the given sink. If the
// sink also implements io.Closer it is closed by Close.
func NewWriter(w io.WriteSeeker) *Writer {
	return &Writer{w: w}
}

// Create returns an opened writer over the given sink.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	ew := NewWriter(w)
	if err := ew.Open(hdr); err != nil {
		return nil, err
	}
	return ew, nil
}

// SetComputeDuration makes Close replace the header's record duration
// with the measured wall-clock span between the first and last sample
// write divided by the number of complete records.
func (ew *Writer) SetComputeDuration(enable bool) {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	ew.computeDuration = enable
}

// SetFlushPartialRecord controls what happens to a partially filled
// trailing record at Close: by default it is silently dropped; when
// enabled it is zero-padded to a full record and written.
func (ew *Writer) SetFlushPartialRecord(enable bool) {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	ew.flushPartial = enable
}

// Open validates hdr and readies the writer for sample writes. The
// number of data records is treated as unknown until Close.
func (ew *Writer) Open(hdr Header) error {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	if ew.closed {
		return ErrClosed
	}
	if ew.opened {
		return fmt.Errorf("edf: writer already open")
	}
	if len(hdr.Signals) == 0 {
		return ErrNoSignals
	}
	if hdr.RecordDuration <= 0 {
		return fmt.Errorf("%w: %v", ErrBadDuration, hdr.RecordDuration)
	}
	if err := validateSignals(hdr.Type, hdr.Signals); err != nil {
		return err
	}

	ew.hdr = hdr.clone()
	ew.hdr.DataRecords = -1 // Unknown number of data records (at this time).
	ew.buf = make([]int, ew.hdr.RecordLength())
	ew.scratch = make([]byte, ew.hdr.recordBytes())
	ew.written = 0
	ew.records = 0
	ew.opened = true
	return nil
}

// Header returns a copy of the writer's header. After Close it carries
// the finalized record count and duration.
func (ew *Writer) Header() Header {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	return *ew.hdr.clone()
}

// WriteDigitalSamples appends raw digital samples to the stream.
//
// Samples must arrive in channel order, starting at signal 0 and
// cycling: either one full record per call or one signal's block at a
// time. This ordering is a caller contract and is not validated;
// mis-ordered calls silently corrupt sample placement.
func (ew *Writer) WriteDigitalSamples(samples []int) error {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	return ew.writeDigital(samples)
}

// WritePhysicalSamples appends calibrated physical samples, converting
// each to its signal's digital value by position in the record cycle.
// The same channel-order contract as WriteDigitalSamples applies.
func (ew *Writer) WritePhysicalSamples(values []float64) error {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	if !ew.opened {
		return ErrNotOpen
	}
	digital := make([]int, len(values))
	for i, v := range values {
		sig := &ew.hdr.Signals[ew.hdr.signalAt(ew.written+int64(i))]
		digital[i] = sig.PhysicalToDigital(v)
	}
	return ew.writeDigital(digital)
}

// WritePhysicalRecord writes one whole data record of physical values,
// one slice per signal in signal order.
func (ew *Writer) WritePhysicalRecord(signals [][]float64) error {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	if !ew.opened {
		return ErrNotOpen
	}
	if len(signals) != ew.hdr.SignalCount() {
		return fmt.Errorf("%w: expected %d signals, got %d",
			ErrSignalCountMismatch, ew.hdr.SignalCount(), len(signals))
	}
	var totalSamples int
	for _, signal := range signals {
		totalSamples += len(signal)
	}
	if totalSamples*ew.hdr.Type.ByteWidth() > maxRecordBytes {
		return fmt.Errorf("%w: %d bytes, max is %d bytes",
			ErrRecordTooLarge, totalSamples*ew.hdr.Type.ByteWidth(), maxRecordBytes)
	}

	digital := make([]int, 0, totalSamples)
	for i := range signals {
		sig := &ew.hdr.Signals[i]
		for _, v := range signals[i] {
			digital = append(digital, sig.PhysicalToDigital(v))
		}
	}
	return ew.writeDigital(digital)
}

func (ew *Writer) writeDigital(samples []int) error {
	if ew.closed {
		return ErrClosed
	}
	if !ew.opened {
		return ErrNotOpen
	}

	if !ew.headerOut {
		now := time.Now().UTC()
		if ew.hdr.StartTime.IsZero() {
			ew.hdr.StartTime = now.Add(-ew.hdr.RecordDuration)
		}
		if err := ew.writeHeader(); err != nil {
			return err
		}
		ew.headerOut = true
		ew.firstWrite = now
	}
	ew.lastWrite = time.Now()

	for _, v := range samples {
		ew.buf[ew.off] = v
		ew.off++
		ew.written++
		if ew.off == len(ew.buf) {
			if err := ew.flushRecord(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ew *Writer) flushRecord() error {
	packSamples(ew.scratch, ew.buf, ew.hdr.Type.ByteWidth())
	if _, err := ew.w.Write(ew.scratch); err != nil {
		return fmt.Errorf("error writing data record: %w", err)
	}
	ew.records++
	ew.off = 0
	return nil
}

// Close finalizes the file: it resolves the record count and, when
// requested, the measured record duration, rewrites the header at
// offset 0, and closes the sink if it implements io.Closer. Sample
// data already written is never touched. A second Close is a no-op.
func (ew *Writer) Close() error {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	if ew.closed {
		return nil
	}
	ew.closed = true

	var err error
	if ew.opened {
		if ew.flushPartial && ew.off > 0 {
			for i := ew.off; i < len(ew.buf); i++ {
				ew.buf[i] = 0
			}
			err = ew.flushRecord()
		}
		ew.off = 0

		if ew.hdr.DataRecords == -1 {
			ew.hdr.DataRecords = ew.records
		}
		if ew.computeDuration && ew.records > 0 && !ew.firstWrite.IsZero() {
			if d := ew.lastWrite.Sub(ew.firstWrite) / time.Duration(ew.records); d > 0 {
				ew.hdr.RecordDuration = d
			}
		}
		if ew.hdr.StartTime.IsZero() {
			ew.hdr.StartTime = time.Now().UTC().Add(-ew.hdr.RecordDuration)
		}
		if herr := ew.writeHeader(); err == nil {
			err = herr
		}
	}

	if c, ok := ew.w.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// writeHeader serializes the current header and writes it at offset 0.
func (ew *Writer) writeHeader() error {
	b, err := MarshalHeader(ew.hdr)
	if err != nil {
		return err
	}
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to header: %w", err)
	}
	if _, err := ew.w.Write(b); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	return nil
}
