//go:build mage

// Package main contains Mage build targets for trendscope developer tooling.
package main

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "trendscope"
	cmdPkg  = "./cmd/trendscope"
)

// sampleConfig is written by Init when no trendscope.yaml exists.
const sampleConfig = `api:
  base_url: http://localhost:8000/api
  timeout: 30s
  max_retries: 2
cache:
  stale_time: 30s
  gc_time: 5m
poll:
  ingest_interval: 5s
  documents_interval: 5s
  search_debounce: 300ms
  search_rate: 2
log:
  level: info
`

// Init writes a starter trendscope.yaml and creates .secrets/ for the API token.
func Init() error {
	if err := os.MkdirAll(".secrets", 0o700); err != nil {
		return fmt.Errorf("creating .secrets: %w", err)
	}
	fmt.Println("   .secrets/ (put your bearer token in .secrets/api-token)")

	if _, err := os.Stat("trendscope.yaml"); err == nil {
		fmt.Println("   trendscope.yaml exists, left unchanged")
		return nil
	}
	if err := os.WriteFile("trendscope.yaml", []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing trendscope.yaml: %w", err)
	}
	fmt.Println("   trendscope.yaml")
	return nil
}

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + buildVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// buildVersion is the nearest git tag, or "dev" outside a tagged checkout.
func buildVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(v) == "" {
		return "dev"
	}
	return strings.TrimSpace(v)
}

// Test runs go vet and the unit tests with the race detector.
func Test() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Dashboard builds the binary and opens the console.
func Dashboard() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "dashboard")
}

// Stats prints Go production and test line counts per package directory.
func Stats() error {
	prod, test := map[string]int{}, map[string]int{}
	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
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
		n := nonBlankLines(data)
		dir := filepath.Dir(path)
		if strings.HasSuffix(path, "_test.go") {
			test[dir] += n
		} else {
			prod[dir] += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	var totalProd, totalTest int
	for _, dir := range slices.Sorted(maps.Keys(prod)) {
		fmt.Printf("%-28s %6d prod %6d test\n", dir, prod[dir], test[dir])
		totalProd += prod[dir]
		totalTest += test[dir]
	}
	fmt.Printf("%-28s %6d prod %6d test\n", "total", totalProd, totalTest)
	return nil
}

func nonBlankLines(data []byte) int {
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}
