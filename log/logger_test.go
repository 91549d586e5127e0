package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	defer SetLevel(Notice)

	logger := New("test")

	SetLevel(Notice)
	logger.Info("hidden")
	logger.Notice("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("expected info message to be filtered at notice level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected notice message in output; got %q", buf.String())
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("value %d", 42)
	if !strings.Contains(buf.String(), "value 42") || !strings.Contains(buf.String(), "[test]") {
		t.Fatalf("expected debug message tagged with module name; got %q", buf.String())
	}

	buf.Reset()
	SetModuleLevel("test", Error)
	logger.Warning("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected module level override to filter warnings; got %q", buf.String())
	}
}
