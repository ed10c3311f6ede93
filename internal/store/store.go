// Package store persists the student model as a single JSON document with a
// one-generation backup and atomic replacement of the primary file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/student-model/internal/model"
)

var (
	// ErrCorrupt means the file is not a parseable document.
	ErrCorrupt = errors.New("corrupt document")
	// ErrInvalidDocument means required structure is missing.
	ErrInvalidDocument = errors.New("invalid document structure")
)

var (
	requiredKeys     = []string{"metadata", "concepts", "sessions"}
	requiredMetadata = []string{"created", "last_updated"}
)

// LoadStatus tells the caller where a loaded document came from.
type LoadStatus int

const (
	// StatusNew: no file exists; the document is fresh and not yet persisted.
	StatusNew LoadStatus = iota
	// StatusLoaded: the primary file was read and validated.
	StatusLoaded
	// StatusRestored: the primary was unusable and the backup was rewritten as the primary.
	StatusRestored
	// StatusReset: neither primary nor backup was usable; the document is fresh.
	StatusReset
)

func (s LoadStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusLoaded:
		return "loaded"
	case StatusRestored:
		return "restored"
	case StatusReset:
		return "reset"
	}
	return fmt.Sprintf("LoadStatus(%d)", int(s))
}

// Store reads and writes one document at a fixed path.
type Store struct {
	path string
	log  *zap.Logger
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recovery and save events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store for the document at path. Nothing is touched on disk.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		log:  zap.NewNop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the primary file path.
func (s *Store) Path() string { return s.path }

// BackupPath returns the path of the single retained backup generation.
func (s *Store) BackupPath() string { return s.path + ".backup" }

func (s *Store) tempPath() string { return s.path + ".tmp" }

// Exists reports whether the primary file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Now returns the store's current time.
func (s *Store) Now() time.Time { return s.now() }

// Load reads the document. It never fails: a missing file yields a fresh
// document (StatusNew); an unparseable or structurally invalid primary falls
// back to the backup, which is then written back as the primary
// (StatusRestored). When nothing is recoverable a fresh document is returned
// with StatusReset.
//
// Note that a restore writes to disk even though Load looks read-only.
func (s *Store) Load() (*model.Document, LoadStatus) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debug("no model file", zap.String("path", s.path))
		return model.NewDocument(s.now()), StatusNew
	}
	if err != nil {
		s.log.Error("read model", zap.String("path", s.path), zap.Error(err))
		return model.NewDocument(s.now()), StatusReset
	}

	doc, err := Decode(data)
	if err == nil {
		if bad := doc.Malformed(); len(bad) > 0 {
			s.log.Warn("model has malformed members, kept as-is",
				zap.String("path", s.path), zap.Strings("members", bad))
		}
		return doc, StatusLoaded
	}
	s.log.Warn("model unusable, trying backup", zap.String("path", s.path), zap.Error(err))

	if doc, ok := s.restore(); ok {
		return doc, StatusRestored
	}
	s.log.Error("recovery exhausted, starting from an empty model", zap.String("path", s.path))
	return model.NewDocument(s.now()), StatusReset
}

// restore loads the backup and writes it over the primary. The backup itself
// is left in place and last_updated is not refreshed, so the restored content
// is stable across later loads.
func (s *Store) restore() (*model.Document, bool) {
	backup := s.BackupPath()
	data, err := os.ReadFile(backup)
	if err != nil {
		s.log.Warn("backup unavailable", zap.String("path", backup), zap.Error(err))
		return nil, false
	}
	doc, err := Decode(data)
	if err != nil {
		s.log.Warn("backup unusable", zap.String("path", backup), zap.Error(err))
		return nil, false
	}
	if err := s.writePrimary(doc); err != nil {
		s.log.Warn("restored backup not written as primary", zap.String("path", s.path), zap.Error(err))
	} else {
		s.log.Info("restored model from backup", zap.String("path", s.path), zap.String("backup", backup))
	}
	return doc, true
}

// Save validates doc, refreshes metadata.last_updated and replaces the primary
// file atomically. An existing primary is copied to the backup path first. On
// the first ever save the backup is created from the new primary. On error the
// previous primary is left untouched.
func (s *Store) Save(doc *model.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc.Metadata.LastUpdated = model.At(s.now())

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if s.Exists() {
		if err := copyFile(s.path, s.BackupPath()); err != nil {
			return fmt.Errorf("backup model: %w", err)
		}
	}
	if err := s.writePrimary(doc); err != nil {
		return err
	}
	if _, err := os.Stat(s.BackupPath()); errors.Is(err, os.ErrNotExist) {
		if err := copyFile(s.path, s.BackupPath()); err != nil {
			s.log.Warn("create initial backup", zap.String("path", s.BackupPath()), zap.Error(err))
		}
	}

	s.log.Debug("saved model",
		zap.String("path", s.path),
		zap.Int("concepts", len(doc.Concepts)),
		zap.Int("misconceptions", len(doc.Misconceptions)))
	return nil
}

// Init saves a fresh document with the given profile, replacing any existing
// model. The replaced model remains available as the backup.
func (s *Store) Init(profile string) (*model.Document, error) {
	doc := model.NewDocument(s.now())
	doc.Metadata.StudentProfile = profile
	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// writePrimary writes doc to the temp path and renames it over the primary.
func (s *Store) writePrimary(doc *model.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	tmp := s.tempPath()
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace model: %w", err)
	}
	return nil
}

// Encode renders doc as indented UTF-8 JSON with a trailing newline.
func Encode(doc *model.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses and validates a document. The presence of the required
// top-level and metadata keys is the only structural check. Nested values of
// the wrong type are kept verbatim (see Document.Malformed) and surface later
// as missing or default values, never as a rejected document.
func Decode(data []byte) (*model.Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for _, key := range requiredKeys {
		if isAbsent(raw[key]) {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidDocument, key)
		}
	}
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(raw["metadata"], &meta); err != nil {
		return nil, fmt.Errorf("%w: metadata is not an object", ErrInvalidDocument)
	}
	for _, key := range requiredMetadata {
		if isAbsent(meta[key]) {
			return nil, fmt.Errorf("%w: missing \"metadata.%s\"", ErrInvalidDocument, key)
		}
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

func isAbsent(v json.RawMessage) bool {
	return len(v) == 0 || string(bytes.TrimSpace(v)) == "null"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
