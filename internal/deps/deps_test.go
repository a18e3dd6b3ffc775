package deps_test

import (
	"os"
	"path/filepath"
	"testing"

	"reel/internal/deps"
)

func TestCheckBinariesFindsStub(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "reel-test-tool")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir)

	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Tool", Command: "reel-test-tool"},
		{Name: "Ghost", Command: "reel-missing-tool"},
		{Name: "Blank"},
	})
	if len(statuses) != 3 {
		t.Fatalf("statuses = %d", len(statuses))
	}
	if !statuses[0].Available || statuses[0].Command != stub {
		t.Fatalf("stub status = %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail == "" {
		t.Fatalf("missing status = %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("blank status = %+v", statuses[2])
	}
}

func TestRequirementsIncludeFFmpeg(t *testing.T) {
	reqs := deps.Requirements()
	if len(reqs) == 0 || reqs[0].Command != "ffmpeg" {
		t.Fatalf("requirements = %+v", reqs)
	}
}
