package restore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseManifest reads a package manifest: one package name per line, order
// preserved, blank lines and #-comments ignored.
func ParseManifest(r io.Reader) ([]string, error) {
	var pkgs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pkgs = append(pkgs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return pkgs, nil
}

// LoadManifest reads a manifest file from disk. A missing file is not an
// error: a backup without a manifest simply installs nothing.
func LoadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseManifest(f)
}
