// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 The edf authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import "encoding/binary"

// PackSample stores v into b as a little-endian two's-complement
// integer of width len(b). Widths 1 through 4 are supported; any other
// width is a programming error and panics.
func PackSample(b []byte, v int) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 3:
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		panic("edf: unsupported sample width")
	}
}

// UnpackSample reads a little-endian two's-complement integer of width
// len(b) from b, sign-extending it. Widths 1 through 4 are supported;
// any other width panics.
func UnpackSample(b []byte) int {
	switch len(b) {
	case 1:
		return int(int8(b[0]))
	case 2:
		return int(int16(binary.LittleEndian.Uint16(b)))
	case 3:
		v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		return int(int32(v<<8) >> 8)
	case 4:
		return int(int32(binary.LittleEndian.Uint32(b)))
	default:
		panic("edf: unsupported sample width")
	}
}

// packSamples packs src into dst at the given per-sample width. dst
// must hold len(src)*width bytes.
func packSamples(dst []byte, src []int, width int) {
	for i, v := range src {
		PackSample(dst[i*width:(i+1)*width], v)
	}
}

// unpackSamples unpacks len(dst) samples of the given width from src.
func unpackSamples(dst []int, src []byte, width int) {
	for i := range dst {
		dst[i] = UnpackSample(src[i*width : (i+1)*width])
	}
}
