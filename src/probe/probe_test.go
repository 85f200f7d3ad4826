package probe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var errNotFound = errors.New("executable file not found in $PATH")

func notOnPath(string) (string, error) { return "", errNotFound }

// statOnly reports every path in present as the given regular file; anything
// else does not exist.
func statOnly(t *testing.T, present ...string) func(string) (os.FileInfo, error) {
	t.Helper()
	real := filepath.Join(t.TempDir(), "tesseract")
	if err := os.WriteFile(real, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("write fake engine: %v", err)
	}
	set := make(map[string]bool, len(present))
	for _, p := range present {
		set[p] = true
	}
	return func(p string) (os.FileInfo, error) {
		if set[p] {
			return os.Stat(real)
		}
		return nil, os.ErrNotExist
	}
}

func TestFindEngineAbsent(t *testing.T) {
	p, ok := FindEngine(Options{
		GOOS:     "linux",
		LookPath: notOnPath,
		Stat:     statOnly(t),
	})
	if ok || p != "" {
		t.Fatalf("expected absent, got (%q, %v)", p, ok)
	}
}

func TestFindEngineResolverWins(t *testing.T) {
	p, ok := FindEngine(Options{
		GOOS:     "linux",
		LookPath: func(name string) (string, error) { return "/opt/bin/" + name, nil },
		Stat:     statOnly(t, "/usr/bin/tesseract"),
	})
	if !ok || p != "/opt/bin/tesseract" {
		t.Fatalf("expected resolver path, got (%q, %v)", p, ok)
	}
}

func TestFindEngineKnownPathWhenResolverFails(t *testing.T) {
	p, ok := FindEngine(Options{
		GOOS:     "linux",
		LookPath: notOnPath,
		Stat:     statOnly(t, "/usr/local/bin/tesseract"),
	})
	if !ok || p != "/usr/local/bin/tesseract" {
		t.Fatalf("expected known path, got (%q, %v)", p, ok)
	}
}

func TestFindEngineWindowsOrder(t *testing.T) {
	x86 := `C:\Program Files (x86)\Tesseract-OCR\tesseract.exe`
	local := `D:\Users\me\AppData\Local\Tesseract-OCR\tesseract.exe`
	p, ok := FindEngine(Options{
		GOOS:     "windows",
		LookPath: notOnPath,
		Stat:     statOnly(t, x86, local),
		Getenv: func(k string) string {
			if k == "LOCALAPPDATA" {
				return `D:\Users\me\AppData\Local`
			}
			return ""
		},
	})
	if !ok || p != x86 {
		t.Fatalf("expected %q first, got (%q, %v)", x86, p, ok)
	}
}

func TestFindEngineOverride(t *testing.T) {
	p, ok := FindEngine(Options{
		GOOS:     "linux",
		Override: "/custom/tesseract",
		LookPath: func(string) (string, error) { return "/usr/bin/tesseract", nil },
		Stat:     statOnly(t, "/custom/tesseract"),
	})
	if !ok || p != "/custom/tesseract" {
		t.Fatalf("expected override, got (%q, %v)", p, ok)
	}

	// A stale override falls through to the resolver.
	p, ok = FindEngine(Options{
		GOOS:     "linux",
		Override: "/gone/tesseract",
		LookPath: func(string) (string, error) { return "/usr/bin/tesseract", nil },
		Stat:     statOnly(t),
	})
	if !ok || p != "/usr/bin/tesseract" {
		t.Fatalf("expected resolver after stale override, got (%q, %v)", p, ok)
	}
}

func TestFindEngineIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	p, ok := FindEngine(Options{
		GOOS:     "linux",
		Override: dir,
		LookPath: notOnPath,
		Stat: func(p string) (os.FileInfo, error) {
			if p == dir {
				return os.Stat(dir)
			}
			return nil, os.ErrNotExist
		},
	})
	if ok {
		t.Fatalf("directory must not be reported as engine, got %q", p)
	}
}

func TestCandidates(t *testing.T) {
	win := Candidates("windows", func(k string) string {
		if k == "ProgramFiles" {
			return `C:\Program Files`
		}
		return ""
	})
	// %ProgramFiles% duplicates the first hard-coded entry.
	if len(win) != 2 {
		t.Fatalf("expected 2 unique windows candidates, got %v", win)
	}
	if got := Candidates("darwin", nil); got[0] != "/opt/homebrew/bin/tesseract" {
		t.Errorf("unexpected darwin order: %v", got)
	}
	if got := Candidates("freebsd", nil); len(got) != 2 || got[0] != "/usr/bin/tesseract" {
		t.Errorf("unexpected default candidates: %v", got)
	}
}
