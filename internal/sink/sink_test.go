package sink

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xxxsen/dnsbeacon/internal/probe"
)

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func testRecord() *probe.Record {
	return &probe.Record{
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Label:   "k3j2h1",
		Name:    "k3j2h1.lab.example",
		QType:   "AAAA",
		Status:  probe.StatusNXDomain,
		Answers: 0,
	}
}

func TestWriterSink(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	s := NewWriterSink([]io.Writer{a, b})
	if err := s.Write(testRecord()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	want := "2025-01-02T03:04:05.000000Z k3j2h1.lab.example AAAA NXDOMAIN answers=0\n"
	if a.String() != want || b.String() != want {
		t.Fatalf("unexpected output %q / %q", a.String(), b.String())
	}
}

func TestWriterSinkError(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewWriterSink([]io.Writer{failWriter{}, buf})
	if err := s.Write(testRecord()); err == nil {
		t.Fatalf("expected write error")
	}
	if buf.Len() == 0 {
		t.Fatalf("healthy writer should still receive the line")
	}
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records", "beacon.log")
	for i := 0; i < 2; i++ {
		s, err := New(FileConfig{File: path}, WithRData(true))
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		rec := testRecord()
		rec.Status = probe.StatusNoError
		rec.Answers = 1
		rec.RData = []string{"2001:db8::1"}
		if err := s.Write(rec); err != nil {
			t.Fatalf("Write error: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close error: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read record file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 appended lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[0], "answers=1 rdata=2001:db8::1") {
		t.Fatalf("unexpected line %s", lines[0])
	}
}

func TestNewWithoutOutput(t *testing.T) {
	if _, err := New(FileConfig{}); err == nil {
		t.Fatalf("expected error without outputs")
	}
}
