package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LocalStorage keeps uploaded files in a directory on disk. Stored paths are
// returned relative to the server root, e.g. "uploads/1735725600000-ab12cd34-scan.pdf".
type LocalStorage struct {
	root   string
	prefix string
	now    func() time.Time
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root, prefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{
		root:   root,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}, nil
}

// Root is the directory files are written to.
func (l *LocalStorage) Root() string { return l.root }

// Prefix is the URL path segment files are served under.
func (l *LocalStorage) Prefix() string { return l.prefix }

// Save writes r to a new uniquely named file and returns its relative path.
func (l *LocalStorage) Save(name string, r io.Reader) (string, error) {
	stored := fmt.Sprintf("%d-%s-%s", l.now().UnixMilli(), randomHex(4), sanitize(name))

	f, err := os.OpenFile(filepath.Join(l.root, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", stored, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", stored, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close %s: %w", stored, err)
	}
	return path.Join(l.prefix, stored), nil
}

// Remove deletes a file previously returned by Save. Only the base name is
// used, so a crafted path cannot reach outside the root.
func (l *LocalStorage) Remove(relPath string) error {
	base := path.Base(filepath.ToSlash(relPath))
	if base == "." || base == "/" || base == ".." {
		return fmt.Errorf("invalid stored path %q", relPath)
	}
	return os.Remove(filepath.Join(l.root, base))
}

func sanitize(name string) string {
	name = path.Base(filepath.ToSlash(name))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
