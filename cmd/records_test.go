package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/bestfit/internal/store"
)

func record(name string, created time.Time) store.Record {
	return store.Record{ID: name, Kind: store.KindFit, Template: "$x", CreatedAt: created}
}

func ids(records []store.Record) string {
	var parts []string
	for _, r := range records {
		parts = append(parts, r.ID)
	}
	return strings.Join(parts, ",")
}

func TestSelectRecordsForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	records := []store.Record{
		record("rec1", now.AddDate(0, 0, -10)), // 10 days old
		record("rec2", now.AddDate(0, 0, -5)),  // 5 days old
		record("rec3", now.AddDate(0, 0, -1)),  // 1 day old
		record("rec4", now.AddDate(0, 0, -30)), // 30 days old
	}

	// Delete records older than 7 days
	toDelete := selectRecordsForDeletion(records, 0, 7, now)
	if got := ids(toDelete); got != "rec4,rec1" {
		t.Errorf("Selected %q, want rec4,rec1", got)
	}
}

func TestSelectRecordsForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	records := []store.Record{
		record("rec1", now.AddDate(0, 0, -10)),
		record("rec2", now.AddDate(0, 0, -5)),
		record("rec3", now.AddDate(0, 0, -1)),
		record("rec4", now.AddDate(0, 0, -30)),
	}

	// Keep only the newest 2
	toDelete := selectRecordsForDeletion(records, 2, 0, now)
	if got := ids(toDelete); got != "rec4,rec1" {
		t.Errorf("Selected %q, want rec4,rec1", got)
	}

	if got := selectRecordsForDeletion(records, 10, 0, now); len(got) != 0 {
		t.Errorf("Nothing should be selected, got %q", ids(got))
	}
}

func TestSelectRecordsForDeletion_Combined(t *testing.T) {
	now := time.Now()
	records := []store.Record{
		record("rec1", now.AddDate(0, 0, -10)),
		record("rec2", now.AddDate(0, 0, -5)),
		record("rec3", now.AddDate(0, 0, -1)),
		record("rec4", now.AddDate(0, 0, -30)),
		record("rec5", now.AddDate(0, 0, -2)),
	}

	// Older than 4 days selects rec4, rec1, rec2; keeping 3 selects rec4, rec1.
	toDelete := selectRecordsForDeletion(records, 3, 4, now)
	if got := ids(toDelete); got != "rec4,rec1,rec2" {
		t.Errorf("Selected %q, want rec4,rec1,rec2", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		result := formatBytes(tt.bytes)
		if result != tt.expected {
			t.Errorf("formatBytes(%d) = %s, expected %s", tt.bytes, result, tt.expected)
		}
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	if !confirm(&out, strings.NewReader("y\n"), "ok? ") {
		t.Error("Expected yes")
	}
	if out.String() != "ok? " {
		t.Errorf("Prompt = %q", out.String())
	}
	if confirm(&out, strings.NewReader("\n"), "ok? ") {
		t.Error("Empty answer should mean no")
	}
	if confirm(&out, strings.NewReader(""), "ok? ") {
		t.Error("EOF should mean no")
	}
}

// useRecordsDir points the records commands at a fresh store for one test.
func useRecordsDir(t *testing.T) *store.FSStore {
	t.Helper()
	dir := t.TempDir()
	original := recordsDataDir
	recordsDataDir = dir
	t.Cleanup(func() { recordsDataDir = original })

	fs, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return fs
}

func saveRecord(t *testing.T, fs *store.FSStore, created time.Time) *store.Record {
	t.Helper()
	score := 0.25
	rec := &store.Record{
		ID:        uuid.NewString(),
		Kind:      store.KindFit,
		Template:  "$x + $",
		Values:    []float64{2, 3},
		Score:     &score,
		CreatedAt: created,
	}
	if err := fs.Save(rec); err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}
	return rec
}

func saveTrace(t *testing.T, fs *store.FSStore, id string, trials ...int) string {
	t.Helper()
	path, err := fs.TracePath(id)
	if err != nil {
		t.Fatal(err)
	}
	tw, err := store.NewTraceWriter(path, false)
	if err != nil {
		t.Fatal(err)
	}
	for i, trial := range trials {
		if err := tw.Write(store.TraceEntry{Trial: trial, Score: float64(len(trials) - i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func outputCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRecordsListCommand_NoRecords(t *testing.T) {
	useRecordsDir(t)
	cmd, buf := outputCmd()

	if err := runListRecords(cmd, nil); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No records found.") {
		t.Errorf("Output = %q", buf.String())
	}
}

func TestRecordsListCommand_WithRecords(t *testing.T) {
	fs := useRecordsDir(t)
	rec := saveRecord(t, fs, time.Now())
	cmd, buf := outputCmd()

	if err := runListRecords(cmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	out := buf.String()
	for _, want := range []string{"SIZE", rec.ID, "$x + $", "0.25", " B", "Total fits: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRecordsShowCommand(t *testing.T) {
	fs := useRecordsDir(t)
	rec := saveRecord(t, fs, time.Now())
	cmd, buf := outputCmd()

	if err := runShowRecord(cmd, []string{rec.ID}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "2, 3") {
		t.Errorf("Output missing values:\n%s", buf.String())
	}

	if err := runShowRecord(cmd, []string{uuid.NewString()}); err == nil {
		t.Error("Expected error for unknown record")
	}
}

func TestRecordsShowCommand_Trace(t *testing.T) {
	fs := useRecordsDir(t)
	rec := saveRecord(t, fs, time.Now())
	cmd, buf := outputCmd()

	if err := runShowRecord(cmd, []string{rec.ID}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Trace") {
		t.Errorf("Record without trace shows one:\n%s", buf.String())
	}

	saveTrace(t, fs, rec.ID, 3, 17, 42)
	buf.Reset()
	if err := runShowRecord(cmd, []string{rec.ID}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "3 improvements, last at trial 42") {
		t.Errorf("Output missing trace summary:\n%s", buf.String())
	}
}

func TestRecordsCleanCommand_NoFlags(t *testing.T) {
	useRecordsDir(t)
	cmd, _ := outputCmd()

	keepLast, olderThanDays = 0, 0
	if err := runCleanRecords(cmd, nil); err == nil {
		t.Error("Expected error when no flags specified")
	}
}

func TestRecordsCleanCommand_Force(t *testing.T) {
	fs := useRecordsDir(t)
	old := saveRecord(t, fs, time.Now().AddDate(0, 0, -10))
	oldTrace := saveTrace(t, fs, old.ID, 1)
	recent := saveRecord(t, fs, time.Now())
	cmd, buf := outputCmd()

	origOlder, origForce := olderThanDays, forceClean
	olderThanDays, forceClean = 7, true
	defer func() { olderThanDays, forceClean = origOlder, origForce }()

	if err := runCleanRecords(cmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Deleted 1 record(s), 0 failed.") {
		t.Errorf("Output = %q", buf.String())
	}

	if _, err := fs.Load(old.ID); err == nil {
		t.Error("Old record should be deleted")
	}
	if _, err := os.Stat(oldTrace); !os.IsNotExist(err) {
		t.Errorf("Trace of the deleted record should be removed: %v", err)
	}
	if _, err := fs.Load(recent.ID); err != nil {
		t.Errorf("Recent record should remain: %v", err)
	}
}
