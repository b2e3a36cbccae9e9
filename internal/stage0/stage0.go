// Package stage0 reads the bootstrap metadata file recording which compiler
// the build bootstraps from. The file lives at src/stage0.txt under the
// source root and holds "key: value" lines with "#" comments, for example:
//
//	date: 2026-08-01
//	compiler: 1.42.0
//	# dev: 1
//
// A present "dev" key marks the bootstrap compiler as an unreleased
// development build; stable releases must never be built from one.
package stage0

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RelPath is the metadata file location relative to the source root.
const RelPath = "src/stage0.txt"

// Metadata is the parsed bootstrap metadata.
type Metadata struct {
	// Fields holds every key/value pair in file order of last occurrence.
	Fields map[string]string
}

// Load reads and parses the metadata file under srcRoot.
func Load(srcRoot string) (*Metadata, error) {
	path := filepath.Join(srcRoot, filepath.FromSlash(RelPath))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bootstrap metadata: %w", err)
	}
	defer f.Close()

	md := &Metadata{Fields: make(map[string]string)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed bootstrap metadata line: %q", line)
		}
		md.Fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read bootstrap metadata: %w", err)
	}

	return md, nil
}

// IsDev reports whether the bootstrap compiler is a development build.
func (m *Metadata) IsDev() bool {
	_, ok := m.Fields["dev"]
	return ok
}

// Date returns the snapshot date of the bootstrap compiler, or empty.
func (m *Metadata) Date() string {
	return m.Fields["date"]
}

// Compiler returns the recorded bootstrap compiler version, or empty.
func (m *Metadata) Compiler() string {
	return m.Fields["compiler"]
}
