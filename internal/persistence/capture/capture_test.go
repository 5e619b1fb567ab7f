package capture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	lines := []string{`{"seq":1}`, "  {\"seq\":2}\n", `{"seq":3}`}
	for _, l := range lines[:2] {
		if err := w.Write("g1", []byte(l)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Write("g2", []byte(lines[2])); err != nil {
		t.Fatalf("Write g2: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got []string
	if err := ReadFile(w.PathFor("g1"), func(line []byte) error {
		got = append(got, string(line))
		return nil
	}); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Join(got, ",") != `{"seq":1},{"seq":2}` {
		t.Fatalf("g1 lines: %q", got)
	}

	got = nil
	_ = ReadFile(filepath.Join(dir, "g2"+Suffix), func(line []byte) error {
		got = append(got, string(line))
		return nil
	})
	if len(got) != 1 || got[0] != `{"seq":3}` {
		t.Fatalf("g2 lines: %q", got)
	}
}

func TestWriterRejectsEmptyGame(t *testing.T) {
	w := NewWriter(t.TempDir())
	defer w.Close()
	if err := w.Write("", []byte("{}")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.jsonl")
	if err := os.WriteFile(path, []byte("a\n\n b \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got []string
	if err := ReadFile(path, func(line []byte) error {
		got = append(got, string(line))
		return nil
	}); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Join(got, "|") != "a|b" {
		t.Fatalf("lines: %q", got)
	}
}
