package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLookupLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"DEBUG", DebugLevel, true},
		{"debug", DebugLevel, true},
		{" Info ", InfoLevel, true},
		{"WARNING", WarnLevel, true},
		{"warn", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"verbose", InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := LookupLevel(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("LookupLevel(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
			if ParseLevel(tt.input) != tt.expected {
				t.Errorf("ParseLevel(%q) = %v", tt.input, ParseLevel(tt.input))
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"String", String("key", "value"), "key", "value"},
		{"Int", Int("n", 42), "n", 42},
		{"Int64", Int64("n", 1234567890), "n", int64(1234567890)},
		{"Float64", Float64("p", 0.25), "p", 0.25},
		{"Bool", Bool("skip", true), "skip", true},
		{"Duration", Duration("timeout", 5*time.Second), "timeout", "5s"},
		{"Error", Error(errors.New("boom")), "error", "boom"},
		{"ErrorNil", Error(nil), "error", nil},
		{"Tool", Tool("popkins"), "tool", "popkins"},
		{"Experiment", Experiment("exp1"), "experiment", "exp1"},
		{"Run", Run(7), "run", 7},
		{"Timestep", Timestep(99), "timestep", 99},
		{"Category", Category("2mer"), "category", "2mer"},
		{"Path", Path("/tmp/x.csv"), "path", "/tmp/x.csv"},
		{"Count", Count(3), "count", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("%s() = %+v, want {Key:%s Value:%v}", tt.name, tt.field, tt.key, tt.value)
			}
		})
	}
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("run processed", Run(3), Path("run3.csv"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}

	if entry.Level != "INFO" {
		t.Errorf("Level = %v, want INFO", entry.Level)
	}
	if entry.Message != "run processed" {
		t.Errorf("Message = %v, want 'run processed'", entry.Message)
	}
	if entry.Fields["run"] != float64(3) { // JSON unmarshals numbers as float64
		t.Errorf("Fields[run] = %v, want 3", entry.Fields["run"])
	}
	if entry.Fields["path"] != "run3.csv" {
		t.Errorf("Fields[path] = %v", entry.Fields["path"])
	}
	if entry.Time == "" {
		t.Error("Time field is empty")
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(lines))
	}

	for i, want := range []string{"WARN", "ERROR"} {
		var entry LogEntry
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			t.Fatalf("Failed to unmarshal entry %d: %v", i, err)
		}
		if entry.Level != want {
			t.Errorf("entry %d level = %v, want %v", i, entry.Level, want)
		}
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Tool("aggregate-runs"), Experiment("exp1"))
	child.Info("matrix written", Category("free"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if entry.Fields["tool"] != "aggregate-runs" {
		t.Errorf("tool field = %v", entry.Fields["tool"])
	}
	if entry.Fields["experiment"] != "exp1" {
		t.Errorf("experiment field = %v", entry.Fields["experiment"])
	}
	if entry.Fields["category"] != "free" {
		t.Errorf("category field = %v", entry.Fields["category"])
	}
}

// TestJSONLogger_ChildrenShareWriter checks concurrent children never interleave lines
func TestJSONLogger_ChildrenShareWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	var wg sync.WaitGroup
	for run := 0; run < 8; run++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			child := logger.With(Run(run))
			for i := 0; i < 50; i++ {
				child.Info("timestep", Timestep(i))
			}
		}(run)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 400 {
		t.Fatalf("Expected 400 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.SetLevel(ErrorLevel)
	if logger.GetLevel() != ErrorLevel {
		t.Errorf("After SetLevel, level = %v, want ErrorLevel", logger.GetLevel())
	}

	logger.Info("info")
	if buf.Len() != 0 {
		t.Error("Expected no output for Info at ErrorLevel")
	}

	logger.Error("error")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("message without fields")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, exists := entry["fields"]; exists {
		t.Error("Expected fields key to be omitted when empty")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "run finished", Run(1))
	timer.End(Count(10))
	timer.EndError(errors.New("truncated"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var done, failed LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &done); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &failed); err != nil {
		t.Fatal(err)
	}
	if _, ok := done.Fields["latency"]; !ok {
		t.Error("missing latency field")
	}
	if done.Fields["count"] != float64(10) || done.Fields["run"] != float64(1) {
		t.Errorf("unexpected fields %v", done.Fields)
	}
	if failed.Level != "ERROR" || failed.Fields["error"] != "truncated" {
		t.Errorf("unexpected error entry %+v", failed)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.With(Run(1)).Info("ignored")
	if logger.GetLevel() != InfoLevel {
		t.Error("NopLogger level should be InfoLevel")
	}
}

func BenchmarkJSONLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("timestep", Run(1), Timestep(i))
	}
}
