// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 The edf authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package edf reads and writes biomedical recordings in the EDF
// (European Data Format, 16-bit) and BDF (BioSemi Data Format, 24-bit)
// file formats.
//
// A file consists of a fixed-width ASCII header describing the
// recording and each signal, followed by data records. A data record
// holds one fixed duration of samples for every signal, channel-major,
// encoded as little-endian two's-complement integers.
//
// Writing is streaming: samples are fed to a Writer in channel order
// and buffered into complete data records, and the header is finalized
// (record count, measured duration) when the writer is closed. Reading
// is random access: a Reader serves whole records or per-signal sample
// ranges by offset arithmetic over the record layout.
//
// Writers compose: Joiner, ChannelRemover, and ChannelFilter wrap an
// inner writer and rewrite the stream (and its header) on the way
// through, so a recording can be downsized or filtered while it is
// being captured.
package edf
