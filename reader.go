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
)

// Reader reads EDF/BDF files with random access: whole data records at
// a global record cursor, or per-signal sample ranges, each signal
// keeping its own independent cursor.
type Reader struct {
	mu sync.Mutex
	r  io.ReadSeeker

	hdr          *Header
	size         int64
	totalRecords int

	recordPos int     // global data record cursor
	samplePos []int64 // per-signal sample cursors

	closed bool
}

// Open parses and validates the header of an EDF/BDF file. If the
// source also implements io.Closer it is closed by Close.
func Open(r io.ReadSeeker) (*Reader, error) {
	hdr, err := ParseHeader(r)
	if err != nil {
		return nil, err
	}

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("error sizing source: %w", err)
	}

	er := &Reader{
		r:         r,
		hdr:       hdr,
		size:      size,
		samplePos: make([]int64, len(hdr.Signals)),
	}
	er.totalRecords = er.countRecords()
	return er, nil
}

// countRecords derives the record count from the source size. Trailing
// bytes that do not form a complete record are ignored.
func (er *Reader) countRecords() int {
	data := er.size - int64(er.hdr.ByteSize())
	if data <= 0 {
		return 0
	}
	return int(data / int64(er.hdr.recordBytes()))
}

// Header returns a copy of the parsed header.
func (er *Reader) Header() Header {
	er.mu.Lock()
	defer er.mu.Unlock()
	return *er.hdr.clone()
}

// TotalRecords returns the number of complete data records in the
// file, derived from the source size rather than the header field.
func (er *Reader) TotalRecords() int {
	er.mu.Lock()
	defer er.mu.Unlock()
	return er.totalRecords
}

// RecordPosition returns the global record cursor.
func (er *Reader) RecordPosition() int {
	er.mu.Lock()
	defer er.mu.Unlock()
	return er.recordPos
}

// SetRecordPosition moves the global record cursor.
func (er *Reader) SetRecordPosition(pos int) {
	er.mu.Lock()
	defer er.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	er.recordPos = pos
}

// ReadDigitalRecord reads the whole data record at the record cursor
// and advances the cursor. It returns io.EOF once no complete record
// remains; a partial record is never returned.
func (er *Reader) ReadDigitalRecord() ([]int, error) {
	er.mu.Lock()
	defer er.mu.Unlock()
	return er.readRecord()
}

// ReadPhysicalRecord reads the data record at the record cursor with
// every sample converted to its signal's physical value.
func (er *Reader) ReadPhysicalRecord() ([]float64, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	digital, err := er.readRecord()
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(digital))
	pos := 0
	for i := range er.hdr.Signals {
		sig := &er.hdr.Signals[i]
		for j := 0; j < sig.SamplesPerRecord; j++ {
			values[pos] = sig.DigitalToPhysical(digital[pos])
			pos++
		}
	}
	return values, nil
}

func (er *Reader) readRecord() ([]int, error) {
	if er.recordPos >= er.totalRecords {
		return nil, io.EOF
	}

	recordBytes := er.hdr.recordBytes()
	offset := int64(er.hdr.ByteSize()) + int64(er.recordPos)*int64(recordBytes)
	buf := make([]byte, recordBytes)
	if err := er.readAt(offset, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}

	record := make([]int, er.hdr.RecordLength())
	unpackSamples(record, buf, er.hdr.Type.ByteWidth())
	er.recordPos++
	return record, nil
}

// SamplePosition returns the given signal's sample cursor.
func (er *Reader) SamplePosition(signal int) (int64, error) {
	er.mu.Lock()
	defer er.mu.Unlock()
	if signal < 0 || signal >= len(er.hdr.Signals) {
		return 0, fmt.Errorf("%w: %d", ErrSignalIndex, signal)
	}
	return er.samplePos[signal], nil
}

// SetSamplePosition moves the given signal's sample cursor.
func (er *Reader) SetSamplePosition(signal int, pos int64) error {
	er.mu.Lock()
	defer er.mu.Unlock()
	if signal < 0 || signal >= len(er.hdr.Signals) {
		return fmt.Errorf("%w: %d", ErrSignalIndex, signal)
	}
	if pos < 0 {
		pos = 0
	}
	er.samplePos[signal] = pos
	return nil
}

// AvailableSamples returns how many samples of the given signal remain
// between its cursor and the end of the file.
func (er *Reader) AvailableSamples(signal int) (int64, error) {
	er.mu.Lock()
	defer er.mu.Unlock()
	if signal < 0 || signal >= len(er.hdr.Signals) {
		return 0, fmt.Errorf("%w: %d", ErrSignalIndex, signal)
	}
	return er.available(signal), nil
}

func (er *Reader) available(signal int) int64 {
	total := int64(er.totalRecords) * int64(er.hdr.Signals[signal].SamplesPerRecord)
	return total - er.samplePos[signal]
}

// ReadDigitalSamples reads up to n raw digital samples of one signal
// from its cursor, advancing the cursor by the amount actually read.
// Fewer than n samples are returned at the end of the file; io.EOF is
// returned only when nothing remains.
func (er *Reader) ReadDigitalSamples(signal, n int) ([]int, error) {
	er.mu.Lock()
	defer er.mu.Unlock()
	return er.readSamples(signal, n)
}

// ReadPhysicalSamples reads up to n samples of one signal from its
// cursor, converted to physical values.
func (er *Reader) ReadPhysicalSamples(signal, n int) ([]float64, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	digital, err := er.readSamples(signal, n)
	if err != nil {
		return nil, err
	}
	sig := &er.hdr.Signals[signal]
	values := make([]float64, len(digital))
	for i, d := range digital {
		values[i] = sig.DigitalToPhysical(d)
	}
	return values, nil
}

func (er *Reader) readSamples(signal, n int) ([]int, error) {
	if signal < 0 || signal >= len(er.hdr.Signals) {
		return nil, fmt.Errorf("%w: %d", ErrSignalIndex, signal)
	}
	if avail := er.available(signal); avail <= 0 {
		return nil, io.EOF
	} else if int64(n) > avail {
		n = int(avail)
	}

	width := er.hdr.Type.ByteWidth()
	spr := int64(er.hdr.Signals[signal].SamplesPerRecord)
	blockStart := int64(er.hdr.signalOffsets()[signal])
	recordLength := int64(er.hdr.RecordLength())

	out := make([]int, 0, n)
	for len(out) < n {
		cursor := er.samplePos[signal]
		record := cursor / spr
		within := cursor % spr

		take := int(spr - within)
		if remaining := n - len(out); take > remaining {
			take = remaining
		}

		offset := int64(er.hdr.ByteSize()) +
			int64(width)*(recordLength*record+blockStart+within)
		buf := make([]byte, take*width)
		if err := er.readAt(offset, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break // Truncated file; return what was read.
			}
			return out, err
		}

		chunk := make([]int, take)
		unpackSamples(chunk, buf, width)
		out = append(out, chunk...)
		er.samplePos[signal] += int64(take)
	}
	return out, nil
}

// readAt reads len(buf) bytes at the absolute offset.
func (er *Reader) readAt(offset int64, buf []byte) error {
	if _, err := er.r.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to position: %w", err)
	}
	if _, err := io.ReadFull(er.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return err
		}
		return fmt.Errorf("error reading sample data: %w", err)
	}
	return nil
}

// RewriteHeader overwrites the header bytes at offset 0 with hdr and
// adopts it for subsequent reads. The new header must keep the signal
// count, and the source must be writable.
func (er *Reader) RewriteHeader(hdr Header) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	if hdr.SignalCount() != er.hdr.SignalCount() {
		return fmt.Errorf("%w: have %d signals, new header has %d",
			ErrSignalCountMismatch, er.hdr.SignalCount(), hdr.SignalCount())
	}
	b, err := MarshalHeader(&hdr)
	if err != nil {
		return err
	}
	w, ok := er.r.(io.Writer)
	if !ok {
		return ErrReadOnlySource
	}
	if _, err := er.r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to header: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	er.hdr = hdr.clone()
	er.totalRecords = er.countRecords()
	return nil
}

// Close releases the source if it implements io.Closer. It is
// idempotent.
func (er *Reader) Close() error {
	er.mu.Lock()
	defer er.mu.Unlock()
	if er.closed {
		return nil
	}
	er.closed = true
	if c, ok := er.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SignalReader reads one signal's physical values as a continuous
// stream, sharing the signal's cursor with ReadPhysicalSamples.
type SignalReader struct {
	er     *Reader
	signal int
}

// Signal creates a new SignalReader for a specified signal index.
func (er *Reader) Signal(signal int) (*SignalReader, error) {
	er.mu.Lock()
	defer er.mu.Unlock()
	if signal < 0 || signal >= len(er.hdr.Signals) {
		return nil, fmt.Errorf("%w: %d", ErrSignalIndex, signal)
	}
	return &SignalReader{er: er, signal: signal}, nil
}

// Read fills data with the signal's physical values. It returns io.EOF
// once the signal is exhausted.
func (sr *SignalReader) Read(data []float64) (int, error) {
	values, err := sr.er.ReadPhysicalSamples(sr.signal, len(data))
	if err != nil {
		return 0, err
	}
	if len(values) == 0 && len(data) > 0 {
		return 0, io.EOF
	}
	return copy(data, values), nil
}
