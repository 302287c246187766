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
	"time"
)

// filter is the shared core of the stream decorators. Each filter owns
// exactly one inner writer, keeps a clone of the input header, and
// tracks the incoming digital sample count to map samples to signals.
type filter struct {
	inner   SampleWriter
	in      *Header
	offsets []int // per-signal block offsets within an input record
	count   int64 // incoming digital samples seen
}

// open stores the input header and opens the inner writer with the
// derived output header.
func (f *filter) open(hdr Header, derive func(out *Header)) error {
	if len(hdr.Signals) == 0 {
		return ErrNoSignals
	}
	f.in = hdr.clone()
	f.offsets = f.in.signalOffsets()
	f.count = 0

	out := hdr.clone()
	derive(out)
	return f.inner.Open(*out)
}

// toDigital converts physical values using the input header's
// calibration, by position in the input record cycle.
func (f *filter) toDigital(values []float64) []int {
	digital := make([]int, len(values))
	for i, v := range values {
		sig := &f.in.Signals[f.in.signalAt(f.count+int64(i))]
		digital[i] = sig.PhysicalToDigital(v)
	}
	return digital
}

func (f *filter) Close() error {
	return f.inner.Close()
}

// Joiner merges every k consecutive input data records into one output
// record: the output record duration and every signal's samples per
// record are multiplied by k, and each signal's k per-record blocks
// are laid out back to back.
type Joiner struct {
	filter
	k   int
	buf []int // one joined output record
}

// NewJoiner returns a joiner that groups k input records per output
// record and forwards them to inner.
func NewJoiner(inner SampleWriter, k int) *Joiner {
	j := &Joiner{k: k}
	j.inner = inner
	return j
}

func (j *Joiner) Open(hdr Header) error {
	if j.k < 1 {
		return fmt.Errorf("edf: join factor must be at least 1, got %d", j.k)
	}
	err := j.open(hdr, func(out *Header) {
		out.RecordDuration *= time.Duration(j.k)
		for i := range out.Signals {
			out.Signals[i].SamplesPerRecord *= j.k
		}
	})
	if err != nil {
		return err
	}
	j.buf = make([]int, j.in.RecordLength()*j.k)
	return nil
}

func (j *Joiner) WriteDigitalSamples(samples []int) error {
	inLen := int64(j.in.RecordLength())
	group := inLen * int64(j.k)

	for _, v := range samples {
		p := int(j.count % inLen)
		sig := j.in.signalAt(j.count)
		within := p - j.offsets[sig]
		slot := int((j.count / inLen) % int64(j.k))

		spr := j.in.Signals[sig].SamplesPerRecord
		j.buf[j.offsets[sig]*j.k+slot*spr+within] = v

		j.count++
		if j.count%group == 0 {
			if err := j.inner.WriteDigitalSamples(j.buf); err != nil {
				return err
			}
		}
	}
	return nil
}

func (j *Joiner) WritePhysicalSamples(values []float64) error {
	return j.WriteDigitalSamples(j.toDigital(values))
}

// Close forwards to the inner writer. A trailing group of fewer than k
// input records is dropped, mirroring the writer's handling of a
// partial record.
func (j *Joiner) Close() error {
	return j.filter.Close()
}

// ChannelRemover drops whole signals from the stream: the output
// header omits the removed signals (the rest renumbered) and their
// samples are discarded.
type ChannelRemover struct {
	filter
	removed map[int]bool
}

// NewChannelRemover returns a remover that drops the given signal
// indices and forwards the rest to inner.
func NewChannelRemover(inner SampleWriter, signals ...int) *ChannelRemover {
	removed := make(map[int]bool, len(signals))
	for _, s := range signals {
		removed[s] = true
	}
	cr := &ChannelRemover{removed: removed}
	cr.inner = inner
	return cr
}

func (cr *ChannelRemover) Open(hdr Header) error {
	for s := range cr.removed {
		if s < 0 || s >= len(hdr.Signals) {
			return fmt.Errorf("%w: %d", ErrSignalIndex, s)
		}
	}
	return cr.open(hdr, func(out *Header) {
		kept := out.Signals[:0]
		for i := range out.Signals {
			if !cr.removed[i] {
				kept = append(kept, out.Signals[i])
			}
		}
		out.Signals = kept
	})
}

func (cr *ChannelRemover) WriteDigitalSamples(samples []int) error {
	kept := make([]int, 0, len(samples))
	for _, v := range samples {
		if !cr.removed[cr.in.signalAt(cr.count)] {
			kept = append(kept, v)
		}
		cr.count++
	}
	if len(kept) == 0 {
		return nil
	}
	return cr.inner.WriteDigitalSamples(kept)
}

func (cr *ChannelRemover) WritePhysicalSamples(values []float64) error {
	return cr.WriteDigitalSamples(cr.toDigital(values))
}
