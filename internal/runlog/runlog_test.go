package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/challan-dev/challan/internal/batch"
)

var testTime = time.Date(2021, 2, 1, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		RunID:     "8f14e45f-ceea-467a-9575-2f5b3c6a1d2e",
		Event:     batch.EventFileSkipped,
		File:      "north.csv",
		Message:   "Valid header not found in north.csv. Skipping this file.",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Reports")
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEntry(), entries[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Event = batch.EventFileCompleted
	e2.File = "south.csv"
	e2.Count = 12
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "north.csv", entries[0].File)
	assert.Equal(t, 12, entries[1].Count)

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp,run_id"))
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_Malformed(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join(Header, ",") + "\nyesterday,id,started,,0,hello\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	_, err := Read(dir)
	assert.ErrorContains(t, err, "row 2")
}

func TestFromEvent(t *testing.T) {
	ev := batch.Event{Time: testTime, RunID: "r1", Kind: batch.EventFileCompleted, File: "a.csv", Count: 3,
		Message: "Done processing file: a.csv"}
	e := FromEvent(ev)
	assert.Equal(t, Entry{Timestamp: testTime, RunID: "r1", Event: batch.EventFileCompleted, File: "a.csv",
		Count: 3, Message: "Done processing file: a.csv"}, e)

	assert.True(t, Loggable(ev))
	assert.False(t, Loggable(batch.Event{Kind: batch.EventProgress, Progress: 50}))
}
