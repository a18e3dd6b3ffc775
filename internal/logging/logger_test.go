package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))
	logger = NewComponentLogger(logger, "graph")

	logger.Info("node added", Args(String(FieldNodeID, "n1"), String("kind", "agent"))...)

	line := buf.String()
	if !strings.Contains(line, "graph") {
		t.Fatalf("expected component column in %q", line)
	}
	if !strings.Contains(line, "node_id=n1") || !strings.Contains(line, "kind=agent") {
		t.Fatalf("expected attrs in %q", line)
	}
	if strings.Index(line, "node_id=n1") > strings.Index(line, "kind=agent") {
		t.Fatalf("expected node_id ordered before other fields in %q", line)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))

	logger.Warn("rename", Args(String("title", "Scene One"))...)

	if !strings.Contains(buf.String(), `title="Scene One"`) {
		t.Fatalf("expected quoted value in %q", buf.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Args(Error(nil))...)
}
