// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2026 The edf authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/biorec/edf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createFile opens a fresh read-write file under the test's temp dir.
func createFile(t *testing.T, name string) (*os.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	return f, path
}

func openReader(t *testing.T, path string) *edf.Reader {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	er, err := edf.Open(f)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, er.Close())
	})
	return er
}

func TestWriterReaderSymmetry(t *testing.T) {
	for _, typ := range []edf.FileType{edf.EDF16, edf.BDF24} {
		t.Run(typ.String(), func(t *testing.T) {
			f, path := createFile(t, "test.rec")

			hdr := testHeader(typ)
			hdr.Signals[0].SamplesPerRecord = 4
			hdr.Signals[1].SamplesPerRecord = 2

			ew, err := edf.Create(f, hdr)
			require.NoError(t, err)

			const records = 3
			want := make([][]int, records)
			for r := 0; r < records; r++ {
				record := make([]int, hdr.RecordLength())
				for i := range record {
					record[i] = (r+1)*100 + i
				}
				want[r] = record
				require.NoError(t, ew.WriteDigitalSamples(record))
			}
			require.NoError(t, ew.Close())
			assert.Equal(t, records, ew.Header().DataRecords)

			er := openReader(t, path)
			assert.Equal(t, records, er.TotalRecords())
			assert.Equal(t, records, er.Header().DataRecords)

			for r := 0; r < records; r++ {
				got, err := er.ReadDigitalRecord()
				require.NoError(t, err)
				assert.Equal(t, want[r], got)
			}
			_, err = er.ReadDigitalRecord()
			require.Equal(t, io.EOF, err)
		})
	}
}

func TestWriterSamplesSplitAcrossRecords(t *testing.T) {
	f, path := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.Signals = hdr.Signals[:1]
	hdr.Signals[0].SamplesPerRecord = 4

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)

	// One call spanning two record boundaries plus a partial tail.
	require.NoError(t, ew.WriteDigitalSamples([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	require.NoError(t, ew.Close())

	er := openReader(t, path)
	require.Equal(t, 2, er.TotalRecords())

	got, err := er.ReadDigitalRecord()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
	got, err = er.ReadDigitalRecord()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 7, 8}, got)
}

func TestWriterPhysicalSamples(t *testing.T) {
	f, path := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.Signals[0].SamplesPerRecord = 4
	hdr.Signals[1].SamplesPerRecord = 2

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)

	// One full record in one call: 4 EEG samples then 2 temperature
	// samples, each calibrated against its own signal.
	values := []float64{-500, -100, 100, 500, 36.5, 37.2}
	require.NoError(t, ew.WritePhysicalSamples(values))
	require.NoError(t, ew.Close())

	er := openReader(t, path)
	record, err := er.ReadPhysicalRecord()
	require.NoError(t, err)
	require.Len(t, record, 6)

	eegGain := hdr.Signals[0].Gain()
	tempGain := hdr.Signals[1].Gain()
	for i := 0; i < 4; i++ {
		assert.InDelta(t, values[i], record[i], eegGain)
	}
	for i := 4; i < 6; i++ {
		assert.InDelta(t, values[i], record[i], tempGain)
	}
}

func TestWritePhysicalRecord(t *testing.T) {
	f, path := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.Signals[0].SamplesPerRecord = 3
	hdr.Signals[1].SamplesPerRecord = 1

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)

	require.NoError(t, ew.WritePhysicalRecord([][]float64{{-250, 0, 250}, {37}}))

	// Signal count must match the header.
	err = ew.WritePhysicalRecord([][]float64{{1, 2, 3}})
	require.ErrorIs(t, err, edf.ErrSignalCountMismatch)

	require.NoError(t, ew.Close())

	er := openReader(t, path)
	assert.Equal(t, 1, er.TotalRecords())
}

func TestWritePhysicalRecordTooLarge(t *testing.T) {
	f, _ := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.Signals = hdr.Signals[:1]
	hdr.Signals[0].SamplesPerRecord = 40000 // 80000 bytes per record

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)
	defer ew.Close()

	err = ew.WritePhysicalRecord([][]float64{make([]float64, 40000)})
	require.ErrorIs(t, err, edf.ErrRecordTooLarge)
}

func TestWriterDropsPartialRecord(t *testing.T) {
	f, path := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.Signals = hdr.Signals[:1]
	hdr.Signals[0].SamplesPerRecord = 4

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)

	// One full record plus half of a second one.
	require.NoError(t, ew.WriteDigitalSamples([]int{1, 2, 3, 4, 5, 6}))
	require.NoError(t, ew.Close())

	er := openReader(t, path)
	assert.Equal(t, 1, er.TotalRecords())
	assert.Equal(t, 1, er.Header().DataRecords)
}

func TestWriterFlushesPartialRecordWhenEnabled(t *testing.T) {
	f, path := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.Signals = hdr.Signals[:1]
	hdr.Signals[0].SamplesPerRecord = 4

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)
	ew.SetFlushPartialRecord(true)

	require.NoError(t, ew.WriteDigitalSamples([]int{1, 2, 3, 4, 5, 6}))
	require.NoError(t, ew.Close())

	er := openReader(t, path)
	require.Equal(t, 2, er.TotalRecords())
	er.SetRecordPosition(1)
	got, err := er.ReadDigitalRecord()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 0, 0}, got)
}

func TestWriterIdempotentClose(t *testing.T) {
	f, path := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.Signals[0].SamplesPerRecord = 2
	hdr.Signals[1].SamplesPerRecord = 1

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)
	require.NoError(t, ew.WriteDigitalSamples([]int{1, 2, 3}))

	require.NoError(t, ew.Close())
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, ew.Close())
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A closed writer rejects further samples.
	err = ew.WriteDigitalSamples([]int{4})
	require.ErrorIs(t, err, edf.ErrClosed)
}

func TestWriterAssignsStartTime(t *testing.T) {
	f, path := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.StartTime = time.Time{} // unset

	before := time.Now()
	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)
	require.NoError(t, ew.WriteDigitalSamples(make([]int, hdr.RecordLength())))
	require.NoError(t, ew.Close())

	er := openReader(t, path)
	start := er.Header().StartTime
	// Auto-assigned as (first write - record duration), to 1s header
	// resolution.
	assert.WithinDuration(t, before.Add(-hdr.RecordDuration), start, 2*time.Second)
}

func TestWriterComputesDuration(t *testing.T) {
	f, path := createFile(t, "test.edf")

	hdr := testHeader(edf.EDF16)
	hdr.Signals[0].SamplesPerRecord = 2
	hdr.Signals[1].SamplesPerRecord = 1

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)
	ew.SetComputeDuration(true)

	require.NoError(t, ew.WriteDigitalSamples([]int{1, 2, 3}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, ew.WriteDigitalSamples([]int{4, 5, 6}))
	require.NoError(t, ew.Close())

	// The measured span divided by two records replaces the nominal
	// one-second duration.
	got := ew.Header().RecordDuration
	assert.Greater(t, got, time.Duration(0))
	assert.Less(t, got, time.Second)

	er := openReader(t, path)
	assert.Equal(t, 2, er.TotalRecords())
}

func TestWriterConfigErrors(t *testing.T) {
	f, _ := createFile(t, "test.edf")

	ew := edf.NewWriter(f)
	err := ew.WriteDigitalSamples([]int{1})
	require.ErrorIs(t, err, edf.ErrNotOpen)

	hdr := testHeader(edf.EDF16)
	hdr.Signals = nil
	require.ErrorIs(t, ew.Open(hdr), edf.ErrNoSignals)

	hdr = testHeader(edf.EDF16)
	hdr.RecordDuration = 0
	require.ErrorIs(t, ew.Open(hdr), edf.ErrBadDuration)

	require.NoError(t, ew.Open(testHeader(edf.EDF16)))
	require.NoError(t, ew.Close())
}
