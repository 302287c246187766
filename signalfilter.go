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
	"math"
	"strings"
)

// SignalFilter transforms one signal's sample stream in place. A
// filter may keep hidden state (e.g. a window of recent values); one
// instance must not be shared between signals.
type SignalFilter interface {
	// Name labels the filter in the signal's prefiltering header field.
	Name() string
	// Filter returns the transformed value for the next sample.
	Filter(v float64) float64
}

// rateAware filters are told their signal's sample rate when the
// channel filter opens.
type rateAware interface {
	setSampleRate(rate float64)
}

// ChannelFilter applies stateful per-signal filters to the stream. The
// output header notes each filter's name in the signal's prefiltering
// field; samples of signals without registered filters pass through
// untouched.
type ChannelFilter struct {
	filter
	chains [][]SignalFilter // filter chains indexed by signal
}

// NewChannelFilter returns a channel filter forwarding to inner.
// Register filters with AddSignalFilter before Open.
func NewChannelFilter(inner SampleWriter) *ChannelFilter {
	cf := &ChannelFilter{}
	cf.inner = inner
	return cf
}

// AddSignalFilter registers sf for the given signal. Filters for the
// same signal are applied in registration order.
func (cf *ChannelFilter) AddSignalFilter(signal int, sf SignalFilter) {
	for len(cf.chains) <= signal {
		cf.chains = append(cf.chains, nil)
	}
	cf.chains[signal] = append(cf.chains[signal], sf)
}

func (cf *ChannelFilter) Open(hdr Header) error {
	if len(cf.chains) > len(hdr.Signals) {
		return fmt.Errorf("%w: %d", ErrSignalIndex, len(cf.chains)-1)
	}
	for i, chain := range cf.chains {
		rate := float64(hdr.Signals[i].SamplesPerRecord) / hdr.RecordDuration.Seconds()
		for _, sf := range chain {
			if ra, ok := sf.(rateAware); ok {
				ra.setSampleRate(rate)
			}
		}
	}
	return cf.open(hdr, func(out *Header) {
		for i, chain := range cf.chains {
			if len(chain) == 0 {
				continue
			}
			var parts []string
			if p := out.Signals[i].Prefiltering; p != "" && p != "none" {
				parts = append(parts, p)
			}
			for _, sf := range chain {
				if name := sf.Name(); name != "none" {
					parts = append(parts, name)
				}
			}
			out.Signals[i].Prefiltering = strings.Join(parts, " ")
		}
	})
}

func (cf *ChannelFilter) WriteDigitalSamples(samples []int) error {
	out := make([]int, len(samples))
	for i, v := range samples {
		sig := cf.in.signalAt(cf.count)
		cf.count++
		if sig < len(cf.chains) && len(cf.chains[sig]) > 0 {
			x := float64(v)
			for _, sf := range cf.chains[sig] {
				x = sf.Filter(x)
			}
			v = int(math.Round(x))
		}
		out[i] = v
	}
	return cf.inner.WriteDigitalSamples(out)
}

func (cf *ChannelFilter) WritePhysicalSamples(values []float64) error {
	return cf.WriteDigitalSamples(cf.toDigital(values))
}

// movingAverage smooths a stream with the arithmetic mean of the last
// n values. Until n values have been buffered it returns the raw
// value.
type movingAverage struct {
	n      int
	window []float64
	idx    int
	count  int
	sum    float64
}

// NewMovingAverage returns a moving average filter over the last n
// values.
func NewMovingAverage(n int) SignalFilter {
	return &movingAverage{n: n, window: make([]float64, n)}
}

func (f *movingAverage) Name() string {
	return fmt.Sprintf("MA:%d", f.n)
}

func (f *movingAverage) Filter(v float64) float64 {
	if f.count < f.n {
		f.window[f.count] = v
		f.sum += v
		f.count++
		if f.count < f.n {
			return v
		}
		return f.sum / float64(f.n)
	}
	f.sum += v - f.window[f.idx]
	f.window[f.idx] = v
	f.idx = (f.idx + 1) % f.n
	return f.sum / float64(f.n)
}

// highPass removes slow drift by subtracting a running mean over a
// window of sampleRate/cutoff recent values from each sample.
type highPass struct {
	cutoff float64
	window []float64
	idx    int
	count  int
	sum    float64
}

// NewHighPass returns a leaky high-pass filter with the given cutoff
// frequency. The window size is resolved from the signal's sample rate
// when the enclosing ChannelFilter opens; without a rate the filter
// passes values through unchanged.
func NewHighPass(cutoffHz float64) SignalFilter {
	return &highPass{cutoff: cutoffHz}
}

func (f *highPass) Name() string {
	return fmt.Sprintf("HP:%gHz", f.cutoff)
}

func (f *highPass) setSampleRate(rate float64) {
	n := int(math.Round(rate / f.cutoff))
	if n < 1 {
		n = 1
	}
	f.window = make([]float64, n)
	f.idx = 0
	f.count = 0
	f.sum = 0
}

func (f *highPass) Filter(v float64) float64 {
	if f.window == nil {
		return v
	}
	n := len(f.window)
	if f.count < n {
		f.window[f.count] = v
		f.sum += v
		f.count++
	} else {
		f.sum += v - f.window[f.idx]
		f.window[f.idx] = v
		f.idx = (f.idx + 1) % n
	}
	return v - f.sum/float64(f.count)
}
