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

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadAudioBuffer reads up to n digital samples of one signal from its
// cursor into a go-audio PCM buffer, carrying the signal's sample rate
// and the format's bit depth. It is the interop point for feeding a
// recording into the go-audio ecosystem.
func (er *Reader) ReadAudioBuffer(signal, n int) (*audio.IntBuffer, error) {
	samples, err := er.ReadDigitalSamples(signal, n)
	if err != nil {
		return nil, err
	}
	hdr := er.Header()
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(math.Round(hdr.SampleRate(signal))),
		},
		Data:           samples,
		SourceBitDepth: hdr.Type.ByteWidth() * 8,
	}, nil
}

// WriteWAV exports one signal's entire raw digital stream as a mono
// PCM WAV file at the signal's (rounded) sample rate and the format's
// bit depth. The signal's cursor is restored afterwards.
func (er *Reader) WriteWAV(w io.WriteSeeker, signal int) error {
	pos, err := er.SamplePosition(signal)
	if err != nil {
		return err
	}
	if err := er.SetSamplePosition(signal, 0); err != nil {
		return err
	}
	defer er.SetSamplePosition(signal, pos) // index already validated

	hdr := er.Header()
	rate := int(math.Round(hdr.SampleRate(signal)))
	depth := hdr.Type.ByteWidth() * 8
	enc := wav.NewEncoder(w, rate, depth, 1, 1)

	chunk := hdr.Signals[signal].SamplesPerRecord * 64
	for {
		samples, err := er.ReadDigitalSamples(signal, chunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		buf := &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
			Data:           samples,
			SourceBitDepth: depth,
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("error writing wav data: %w", err)
		}
		if len(samples) < chunk {
			break
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error finalizing wav file: %w", err)
	}
	return nil
}
