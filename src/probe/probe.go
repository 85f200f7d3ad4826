// Package probe locates the OCR engine executable at startup.
//
// The lookup order is: an explicit override path, the OS command resolver
// (PATH lookup), then a per-OS list of well-known installation paths. The
// first regular file wins. Nothing is executed and nothing is written.
package probe

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultExecutable is the engine binary name handed to the command resolver.
const DefaultExecutable = "tesseract"

// Options controls engine probing. Zero values select the host defaults.
type Options struct {
	// Executable is the command name to resolve; defaults to DefaultExecutable.
	Executable string
	// Override is a configured path that is checked before anything else.
	Override string
	GOOS     string
	LookPath func(string) (string, error)
	Stat     func(string) (os.FileInfo, error)
	Getenv   func(string) string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Executable) == "" {
		o.Executable = DefaultExecutable
	}
	if o.GOOS == "" {
		o.GOOS = runtime.GOOS
	}
	if o.LookPath == nil {
		o.LookPath = exec.LookPath
	}
	if o.Stat == nil {
		o.Stat = os.Stat
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	return o
}

// FindEngine returns the path of the OCR engine executable, or ("", false)
// when neither the resolver nor any well-known location has it.
func FindEngine(opts Options) (string, bool) {
	opts = opts.withDefaults()

	if p := strings.TrimSpace(opts.Override); p != "" {
		if isFile(opts.Stat, p) {
			log.Printf("probe: using configured engine path %s", p)
			return p, true
		}
		log.Printf("probe: configured engine path %s is not a file, probing defaults", p)
	}

	if p, err := opts.LookPath(opts.Executable); err == nil && p != "" {
		log.Printf("probe: resolved %s on PATH: %s", opts.Executable, p)
		return p, true
	} else if err != nil {
		log.Printf("probe: %s not on PATH: %v", opts.Executable, err)
	}

	for _, p := range Candidates(opts.GOOS, opts.Getenv) {
		if isFile(opts.Stat, p) {
			log.Printf("probe: found engine at %s", p)
			return p, true
		}
	}

	return "", false
}

// Candidates lists the well-known install locations for goos, most likely first.
func Candidates(goos string, getenv func(string) string) []string {
	if getenv == nil {
		getenv = os.Getenv
	}
	switch goos {
	case "windows":
		paths := []string{
			`C:\Program Files\Tesseract-OCR\tesseract.exe`,
			`C:\Program Files (x86)\Tesseract-OCR\tesseract.exe`,
		}
		for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "LOCALAPPDATA"} {
			if dir := getenv(env); dir != "" {
				paths = appendUnique(paths, windowsJoin(dir, "Tesseract-OCR", "tesseract.exe"))
			}
		}
		return paths
	case "darwin":
		return []string{
			"/opt/homebrew/bin/tesseract",
			"/usr/local/bin/tesseract",
			"/usr/bin/tesseract",
		}
	default:
		return []string{
			"/usr/bin/tesseract",
			"/usr/local/bin/tesseract",
		}
	}
}

func isFile(stat func(string) (os.FileInfo, error), path string) bool {
	fi, err := stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// windowsJoin joins with backslashes regardless of the host OS so candidate
// lists are stable in tests.
func windowsJoin(elem ...string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(elem...)
	}
	return strings.TrimRight(elem[0], `\`) + `\` + strings.Join(elem[1:], `\`)
}

func appendUnique(list []string, p string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, p) {
			return list
		}
	}
	return append(list, p)
}
