// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package exchange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-vfs/vfst"
)

func TestWriteRecords(t *testing.T) {
	fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
		"/work": &vfst.Dir{Perm: 0o755},
	})
	require.NoError(t, err)

	defer cleanup()

	recs := []Record{
		{MsgID: "Save"},
		{MsgID: "%d file", MsgIDPlural: "%d files"},
	}

	require.NoError(t, WriteRecords(fs, "/work/out.json", recs))

	data, err := fs.ReadFile("/work/out.json")
	require.NoError(t, err)

	want := `[
  {
    "msgid": "Save"
  },
  {
    "msgid": "%d file",
    "msgid_plural": "%d files"
  }
]
`
	assert.Equal(t, want, string(data))

	// An empty run still writes a valid, empty array.
	require.NoError(t, WriteRecords(fs, "/work/empty.json", nil))

	data, err = fs.ReadFile("/work/empty.json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestReadRecords(t *testing.T) {
	fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
		"/objects.json": `[{"msgid": "Save"}, {"msgid": "%d file", "msgid_plural": "%d files"}]`,
		"/strings.json": `["Save", "Delete"]`,
		"/mixed.json":   `["Save", {"msgid": "%d file", "msgid_plural": "%d files"}]`,
		"/object.json":  `{"msgid": "Save"}`,
		"/badelem.json": `["Save", 7]`,
		"/invalid.json": `[truncated`,
	})
	require.NoError(t, err)

	defer cleanup()

	recs, err := ReadRecords(fs, "/objects.json")
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{MsgID: "Save"},
		{MsgID: "%d file", MsgIDPlural: "%d files"},
	}, recs)

	recs, err = ReadRecords(fs, "/strings.json")
	require.NoError(t, err)
	assert.Equal(t, []Record{{MsgID: "Save"}, {MsgID: "Delete"}}, recs)

	recs, err = ReadRecords(fs, "/mixed.json")
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{MsgID: "Save"},
		{MsgID: "%d file", MsgIDPlural: "%d files"},
	}, recs)

	_, err = ReadRecords(fs, "/object.json")
	assert.True(t, errors.Is(err, ErrBadShape), "top-level object: %v", err)

	_, err = ReadRecords(fs, "/badelem.json")
	assert.True(t, errors.Is(err, ErrBadShape), "numeric element: %v", err)

	_, err = ReadRecords(fs, "/invalid.json")
	assert.True(t, errors.Is(err, ErrInvalidJSON), "invalid JSON: %v", err)

	_, err = ReadRecords(fs, "/missing.json")
	assert.Error(t, err)
}

func TestRecordsRoundTrip(t *testing.T) {
	fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
		"/work": &vfst.Dir{Perm: 0o755},
	})
	require.NoError(t, err)

	defer cleanup()

	recs := []Record{
		{MsgID: "One"},
		{MsgID: "With \"quotes\" and\nnewline"},
		{MsgID: "%(num)d entry", MsgIDPlural: "%(num)d entries"},
	}

	require.NoError(t, WriteRecords(fs, "/work/r.json", recs))

	got, err := ReadRecords(fs, "/work/r.json")
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}
