package documents

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store manages the local upload tree. All saved files live under a
// single root split into per-purpose subdirectories.
type Store struct {
	root    string
	maxSize int64
	logger  *slog.Logger
}

// Subdirectories of the upload root.
const (
	DirAssignments = "assignments"
	DirRubrics     = "rubrics"
	DirExports     = "exports"
	DirSessions    = "sessions"
)

// NewStore creates the upload tree rooted at root, including all
// subdirectories. maxSize bounds individual uploads in bytes; zero or
// negative disables the check.
func NewStore(root string, maxSize int64, logger *slog.Logger) (*Store, error) {
	for _, dir := range []string{DirAssignments, DirRubrics, DirExports, DirSessions} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
		}
	}

	return &Store{
		root:    root,
		maxSize: maxSize,
		logger:  logger.With("system", "documents"),
	}, nil
}

// Root returns the upload root path.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the absolute path of a named subdirectory.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// Save writes an uploaded stream into the given subdirectory under a
// collision-proof name and returns the stored path. The original
// filename survives as a sanitized suffix so listings stay readable.
func (s *Store) Save(dir, filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		sanitizeFilename(filename),
	)
	path := filepath.Join(s.root, dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	var src io.Reader = r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	n, err := io.Copy(f, src)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		os.Remove(path)
		return "", fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, s.maxSize)
	}

	s.logger.Debug("saved upload", "path", path, "bytes", n)
	return path, nil
}

// ExportPath returns a timestamped path for a new export file. The
// file is not created.
func (s *Store) ExportPath(base, ext string) string {
	name := fmt.Sprintf("%s_%s.%s",
		sanitizeFilename(base),
		time.Now().Format("20060102_150405"),
		strings.TrimPrefix(ext, "."),
	)
	return filepath.Join(s.root, DirExports, name)
}

// SessionPath returns the persistence path for a session ID.
func (s *Store) SessionPath(id string) string {
	return filepath.Join(s.root, DirSessions, sanitizeFilename(id)+".json")
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// sanitizeFilename strips path components and replaces characters unsafe
// for a filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
