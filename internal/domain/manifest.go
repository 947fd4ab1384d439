package domain

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Manifest maps archive file names to their expected SHA-256 hex digest.
type Manifest map[string]string

// ParseManifest reads "<hexdigest> <filename>" lines. Blank lines are ignored.
func ParseManifest(r io.Reader) (Manifest, error) {
	m := Manifest{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: want \"<digest> <file>\", got %q", ErrManifest, line, sc.Text())
		}
		m[fields[1]] = strings.ToLower(fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrManifest, err)
	}
	return m, nil
}

// Expected returns the digest listed for name, if any.
func (m Manifest) Expected(name string) (string, bool) {
	digest, ok := m[name]
	return digest, ok
}
