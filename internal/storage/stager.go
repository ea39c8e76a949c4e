// Package storage stages uploaded files on local disk for the lifetime of a
// single request.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sellwithus/storefront/internal/logger"
	"github.com/sellwithus/storefront/internal/model"
)

// Stager hands out request-scoped staging batches under a root directory
type Stager struct {
	root string
	log  *logger.Logger
}

// NewStager creates a new Stager rooted at dir
func NewStager(dir string, log *logger.Logger) *Stager {
	return &Stager{
		root: dir,
		log:  log.WithComponent("staging"),
	}
}

// Root returns the staging root directory
func (s *Stager) Root() string {
	return s.root
}

// Begin starts a new batch in its own directory. The directory name is a
// fresh UUID so concurrent requests never share a path.
func (s *Stager) Begin() *Batch {
	id := uuid.New().String()
	return &Batch{
		id:    id,
		dir:   filepath.Join(s.root, id),
		names: make(map[string]struct{}),
		log:   s.log,
	}
}

// Batch is the set of files staged for one request. It is not safe for
// concurrent use.
type Batch struct {
	id         string
	dir        string
	dirCreated bool
	names      map[string]struct{}
	files      []model.StagedFile
	log        *logger.Logger
}

// ID returns the batch identifier
func (b *Batch) ID() string {
	return b.id
}

// Dir returns the batch directory
func (b *Batch) Dir() string {
	return b.dir
}

// Files returns the files staged so far, in staging order
func (b *Batch) Files() []model.StagedFile {
	return b.files
}

// Stage writes r under a sanitised form of originalName. The staged name keeps
// the original extension, and repeated names within the batch get a numeric
// suffix instead of overwriting earlier files.
func (b *Batch) Stage(originalName string, r io.Reader) (model.StagedFile, error) {
	if !b.dirCreated {
		if err := os.MkdirAll(b.dir, 0o700); err != nil {
			return model.StagedFile{}, fmt.Errorf("failed to create staging directory: %w", err)
		}
		b.dirCreated = true
	}

	name := b.uniqueName(stagedName(originalName))
	path := filepath.Join(b.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return model.StagedFile{}, fmt.Errorf("failed to create staged file %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return model.StagedFile{}, fmt.Errorf("failed to write staged file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return model.StagedFile{}, fmt.Errorf("failed to close staged file %s: %w", name, err)
	}

	staged := model.StagedFile{Path: path, OriginalName: originalName}
	b.names[strings.ToLower(name)] = struct{}{}
	b.files = append(b.files, staged)

	return staged, nil
}

// Cleanup removes every staged file and the batch directory. Files that are
// already gone are ignored, so Cleanup can be called more than once. Other
// failures are logged and do not stop the remaining removals.
func (b *Batch) Cleanup() error {
	var errs []error

	for _, f := range b.files {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			b.log.Error().Err(err).Str("path", f.Path).Msg("failed to remove staged file")
			errs = append(errs, err)
		}
	}

	if b.dirCreated {
		if err := os.Remove(b.dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			b.log.Error().Err(err).Str("path", b.dir).Msg("failed to remove staging directory")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// uniqueName compares names case-insensitively, since photo.jpg and
// PHOTO.JPG are the same file on some filesystems.
func (b *Batch) uniqueName(name string) string {
	if _, taken := b.names[strings.ToLower(name)]; !taken {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, taken := b.names[strings.ToLower(candidate)]; !taken {
			return candidate
		}
	}
}

// Staged names stay well under the common 255-byte filename limit, leaving
// room for the extension and a duplicate suffix.
const (
	maxStemBytes = 200
	maxExtBytes  = 16
)

// stagedName sanitises originalName and makes sure the result still carries
// the original extension, which sanitising can strip from non-ASCII names.
func stagedName(originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if len(ext) > maxExtBytes {
		ext = ""
	}
	name := SanitizeFilename(originalName)

	if ext == "" {
		return truncateStem(name, "upload")
	}

	if kept := filepath.Ext(name); strings.EqualFold(kept, "."+ext) && name != kept {
		return truncateStem(strings.TrimSuffix(name, kept), "image") + kept
	}

	return truncateStem(strings.TrimSuffix(name, "."), "image") + "." + ext
}

// truncateStem cuts stem to maxStemBytes. Sanitised names are ASCII, so every
// byte offset is a character boundary.
func truncateStem(stem, fallback string) string {
	if len(stem) > maxStemBytes {
		stem = strings.TrimRight(stem[:maxStemBytes], "._")
	}
	if stem == "" {
		return fallback
	}
	return stem
}
