package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/bestfit/internal/opt"
)

func TestTraceWriter_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "linear.jsonl")

	writer, err := NewTraceWriter(path, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []TraceEntry{
		{Trial: 0, Index: 0, Score: 40, Params: []float64{1.1, 1}, Timestamp: time.Now()},
		{Trial: 3, Index: 1, Score: 31.5, Params: []float64{1.1, 1.2}, Timestamp: time.Now()},
		{Trial: 9, Index: -1, Score: 0.25, Timestamp: time.Now()},
	}
	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	if writer.Path() != path {
		t.Errorf("Path() = %q, want %q", writer.Path(), path)
	}

	reader, err := NewTraceReader(path)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(got))
	}
	for i, entry := range got {
		if entry.Trial != entries[i].Trial || entry.Index != entries[i].Index {
			t.Errorf("Entry %d: got trial %d index %d", i, entry.Trial, entry.Index)
		}
		if entry.Score != entries[i].Score {
			t.Errorf("Entry %d: expected score %v, got %v", i, entries[i].Score, entry.Score)
		}
		if len(entry.Params) != len(entries[i].Params) {
			t.Errorf("Entry %d: expected %d params, got %d", i, len(entries[i].Params), len(entry.Params))
		}
	}
}

func TestTraceWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	for i, appendMode := range []bool{false, true} {
		writer, err := NewTraceWriter(path, appendMode)
		if err != nil {
			t.Fatalf("Failed to create trace writer: %v", err)
		}
		if err := writer.Write(TraceEntry{Trial: i * 10, Score: 1, Timestamp: time.Now()}); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("Failed to close writer: %v", err)
		}
	}

	reader, err := NewTraceReader(path)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Trial != 0 || entries[1].Trial != 10 {
		t.Errorf("Expected trials [0 10], got %+v", entries)
	}
}

func TestTraceWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	if err := os.WriteFile(path, []byte("{\"trial\":99}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	writer, err := NewTraceWriter(path, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	writer.Write(TraceEntry{Trial: 1, Timestamp: time.Now()})
	writer.Close()

	reader, err := NewTraceReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	entry, err := reader.Read()
	if err != nil {
		t.Fatal(err)
	}
	if entry.Trial != 1 {
		t.Errorf("Expected the old content to be replaced, got trial %d", entry.Trial)
	}
	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestTraceWriter_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	writer, err := NewTraceWriter(path, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	defer writer.Close()

	if err := writer.Write(TraceEntry{Trial: 0, Score: 1.0, Timestamp: time.Now()}); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}

	// Data should be on disk now (even without closing)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read trace file: %v", err)
	}
	if len(data) == 0 {
		t.Error("Trace file is empty after flush")
	}
}

func TestTraceWriter_ObserveSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	writer, err := NewTraceWriter(path, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	// (c - 3)^2 from c = 1
	compass := opt.NewCompass(opt.CompassConfig{Iterations: 10, BatchSize: 50, MinimumStepDp: 5, Precision: 4})
	result := compass.Run(opt.Problem{
		Cost:     func(c []float64) float64 { return (c[0] - 3) * (c[0] - 3) },
		Dim:      1,
		Samples:  1,
		Observer: writer.Observe,
	})

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	if err := writer.Err(); err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	reader, err := NewTraceReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("Expected traced improvements")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Score >= entries[i-1].Score {
			t.Errorf("Entry %d does not improve: %v >= %v", i, entries[i].Score, entries[i-1].Score)
		}
	}
	if last := entries[len(entries)-1]; last.Score != result.Cost {
		t.Errorf("Last traced score %v != result cost %v", last.Score, result.Cost)
	}
}

func TestTraceReader_NotFound(t *testing.T) {
	_, err := NewTraceReader(filepath.Join(t.TempDir(), "missing.jsonl"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError, got: %v", err)
	}
}

func TestTraceReader_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	if err := os.WriteFile(path, []byte("not json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reader, err := NewTraceReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	if _, err := reader.Read(); err == nil || err == io.EOF {
		t.Errorf("Expected an unmarshal error, got %v", err)
	}
}

func TestDeleteTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	writer, err := NewTraceWriter(path, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	writer.Write(TraceEntry{Trial: 0, Score: 1.0, Timestamp: time.Now()})
	writer.Close()

	if err := DeleteTrace(path); err != nil {
		t.Fatalf("Failed to delete trace: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Trace file still exists after delete")
	}

	// Should not error when deleting nonexistent trace
	if err := DeleteTrace(path); err != nil {
		t.Errorf("DeleteTrace should not error for nonexistent file, got: %v", err)
	}
}

func TestTraceWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	writer, err := NewTraceWriter(path, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(trial int) {
			defer wg.Done()
			writer.Observe(opt.Step{Trial: trial, Cost: float64(trial), Params: []float64{float64(trial)}})
		}(i)
	}
	wg.Wait()

	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	if err := writer.Err(); err != nil {
		t.Fatalf("Concurrent observe failed: %v", err)
	}

	reader, err := NewTraceReader(path)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("Expected 10 entries, got %d", len(entries))
	}
}
