package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"

	"github.com/chazu/collider/pkg/kernel"
)

// Fetch downloads the single file at src into dir and returns its local
// path. src is any go-getter address: a local path, an http(s) URL, an
// s3:: or git:: address, with optional "?checksum=" verification.
func Fetch(ctx context.Context, src, dir string) (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("source: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("source: %w", err)
	}

	dst := filepath.Join(dir, fileName(src))
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("source: fetch %s: %w", src, err)
	}
	return dst, nil
}

// Load reads the mesh at src. Existing local files are read in place;
// anything else is fetched into dir first.
func Load(ctx context.Context, src, dir string) (*kernel.Descriptor, error) {
	if fi, err := os.Stat(src); err == nil && !fi.IsDir() {
		return ReadFile(src)
	}
	local, err := Fetch(ctx, src, dir)
	if err != nil {
		return nil, err
	}
	return ReadFile(local)
}

// fileName derives a local file name from a go-getter address, keeping the
// extension so the format can be detected.
func fileName(src string) string {
	s := src
	if i := strings.Index(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "/")
	base := path.Base(filepath.ToSlash(s))
	if base == "." || base == "/" || base == "" || strings.HasSuffix(base, ":") {
		return "points.xyz"
	}
	return base
}
