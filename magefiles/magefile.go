//go:build mage

// Package main contains Mage build targets for paper-fetch developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI writes to by default.
var projectDirs = []string{
	"downloaded_papers",
	".paper-fetch",
}

// Init creates the default output and ledger directories.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir    = "bin"
	binName   = "paper-fetch"
	cmdPkg    = "./cmd/paper-fetch"
	guiName   = "paper-fetch-gui"
	guiCmdPkg = "./cmd/paper-fetch-gui"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	return build(binName, cmdPkg)
}

// BuildGUI compiles the desktop front end into bin/. It needs cgo and the
// platform OpenGL headers.
func BuildGUI() error {
	return build(guiName, guiCmdPkg)
}

// All builds both binaries.
func All() {
	mg.SerialDeps(Build, BuildGUI)
}

func build(name, pkg string) error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, name)
	if err := sh.RunV("go", "build", "-o", out, pkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests of every package except the GUI.
func Test() error {
	return sh.RunV("go", "test", "./internal/acquire/...", "./internal/httputil/...",
		"./internal/ledger/...", "./internal/pdfcheck/...", "./internal/status/...",
		"./pkg/...", "./cmd/paper-fetch/...")
}

// Stats prints non-blank Go line counts for production code and tests.
func Stats() error {
	var prod, test int
	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	return nil
}
