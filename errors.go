// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 The edf authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import "errors"

// Header format errors, detected eagerly while parsing a file header.
// A parse never returns a partially populated header.
var (
	ErrUnknownFormat  = errors.New("edf: unknown file format")
	ErrBadTimestamp   = errors.New("edf: invalid start date or time")
	ErrBadRecordCount = errors.New("edf: invalid number of data records")
	ErrBadDuration    = errors.New("edf: invalid data record duration")
	ErrBadSignalCount = errors.New("edf: invalid signal count")
	ErrPhysicalRange  = errors.New("edf: invalid physical range")
	ErrDigitalRange   = errors.New("edf: invalid digital range")
	ErrBadSampleCount = errors.New("edf: invalid samples per record")
)

// Configuration errors, detected before any bytes are written.
var (
	ErrNoSignals           = errors.New("edf: header has no signals")
	ErrSignalCountMismatch = errors.New("edf: signal count mismatch")
	ErrSignalIndex         = errors.New("edf: signal index out of range")
	ErrReadOnlySource      = errors.New("edf: source is not writable")
	ErrRecordTooLarge      = errors.New("edf: data record too large")
	ErrNotOpen             = errors.New("edf: writer is not open")
	ErrClosed              = errors.New("edf: writer is closed")
)

// I/O failures from the underlying sink or source are returned wrapped
// with context but are never converted into one of the sentinels above,
// so errors.Is can tell bad data from a bad environment.
