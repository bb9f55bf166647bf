package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/filewatch"
	"github.com/arthur-debert/branchtint/pkg/internal/hashutil"
	"github.com/arthur-debert/branchtint/pkg/internal/jsonutil"
	"github.com/arthur-debert/branchtint/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/tailscale/hujson"
)

// FileStore is a Store backed by a settings.json file. The file may contain
// comments and trailing commas; updates patch the single member they touch
// and keep the rest of the document, comments included.
type FileStore struct {
	path     string
	debounce time.Duration
	logger   zerolog.Logger

	mu sync.Mutex
	// lastWritten is the checksum of the bytes this store last wrote
	lastWritten string
	// lastSeen maps each top-level member to a fingerprint of its value as
	// last read or written
	lastSeen map[string]string
}

// NewFileStore creates a store for the settings file at path. debounce is
// the coalescing window used by Watch; zero selects the filewatch default.
func NewFileStore(path string, debounce time.Duration) *FileStore {
	return &FileStore{
		path:     path,
		debounce: debounce,
		logger:   logging.GetLogger("settings").With().Str("file", path).Logger(),
	}
}

// Path returns the settings file location
func (s *FileStore) Path() string {
	return s.path
}

// Section implements Store
func (s *FileStore) Section(ctx context.Context, key string) (map[string]any, bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	section, isObject := v.(map[string]any)
	if !isObject {
		return nil, true, errors.Newf(errors.ErrSettingsShape, "setting %q is not an object", key).
			WithDetail("path", s.path)
	}
	return section, true, nil
}

// Get implements Store
func (s *FileStore) Get(ctx context.Context, key string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	raw, err := s.read()
	if err != nil {
		return nil, false, err
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrSettingsRead, "failed to parse settings").
			WithDetail("path", s.path)
	}
	v, ok := doc[key]
	return v, ok, nil
}

// Update implements Store
func (s *FileStore) Update(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.read()
	if err != nil {
		return err
	}
	fresh := len(bytes.TrimSpace(raw)) == 0
	if fresh {
		raw = []byte("{}\n")
	}

	doc, err := hujson.Parse(raw)
	if err != nil {
		return errors.Wrap(err, errors.ErrSettingsRead, "failed to parse settings").
			WithDetail("path", s.path)
	}
	if _, ok := doc.Value.(*hujson.Object); !ok {
		return errors.New(errors.ErrSettingsRead, "settings document is not an object").
			WithDetail("path", s.path)
	}

	if value == nil && doc.Find("/"+escapePointer(key)) == nil {
		return nil
	}
	if err := newEditor(&doc).set(key, value); err != nil {
		return errors.Wrap(err, errors.ErrSettingsWrite, "failed to update settings").
			WithDetail("key", key)
	}
	out := doc.Pack()

	if err := writeAtomic(s.path, out); err != nil {
		return errors.Wrap(err, errors.ErrSettingsWrite, "failed to write settings").
			WithDetail("path", s.path)
	}

	s.lastWritten = hashutil.Checksum(out)
	if written, err := decodeDocument(out); err == nil {
		s.lastSeen = fingerprints(written)
	}
	s.logger.Debug().Str("key", key).Bool("removed", value == nil).Msg("Settings updated")
	return nil
}

// Watch implements Store. Changes whose file content equals the last
// content written by Update are self-authored and not reported.
func (s *FileStore) Watch(ctx context.Context, handler func(ChangeEvent)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrSettingsRead, "failed to create settings directory").
			WithDetail("path", s.path)
	}

	w, err := filewatch.New([]string{s.path}, filewatch.Options{
		Debounce: s.debounce,
		Name:     "settings-watch",
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrSettingsRead, "failed to watch settings").
			WithDetail("path", s.path)
	}

	s.mu.Lock()
	if s.lastSeen == nil {
		if raw, err := s.read(); err == nil {
			if doc, err := decodeDocument(raw); err == nil {
				s.lastSeen = fingerprints(doc)
			}
		}
	}
	s.mu.Unlock()

	go func() {
		if err := w.Run(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Settings watcher stopped")
		}
	}()
	go func() {
		for range w.Changes() {
			if ev, ok := s.detect(); ok {
				handler(ev)
			}
		}
	}()
	return nil
}

// detect compares the file against what was last seen and returns the
// members that changed
func (s *FileStore) detect() (ChangeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.read()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read settings after change")
		return ChangeEvent{}, false
	}
	if s.lastWritten != "" && hashutil.Checksum(raw) == s.lastWritten {
		s.logger.Trace().Msg("Ignoring self-authored settings change")
		return ChangeEvent{}, false
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		// Usually a save in progress; the next save triggers again.
		s.logger.Debug().Err(err).Msg("Settings not parseable, ignoring change")
		return ChangeEvent{}, false
	}

	current := fingerprints(doc)
	var changed []string
	for k, fp := range current {
		if s.lastSeen[k] != fp {
			changed = append(changed, k)
		}
	}
	for k := range s.lastSeen {
		if _, ok := current[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.lastSeen = current

	if len(changed) == 0 {
		return ChangeEvent{}, false
	}
	sort.Strings(changed)
	s.logger.Debug().Strs("keys", changed).Msg("External settings change")
	return ChangeEvent{Keys: changed}, true
}

// read returns the file contents; a missing file reads as empty
func (s *FileStore) read() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsRead, "failed to read settings").
			WithDetail("path", s.path)
	}
	return raw, nil
}

// decodeDocument parses JSON with comments into a top-level object. Empty
// input is an empty document.
func decodeDocument(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := jsonutil.Decode(std, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func fingerprints(doc map[string]any) map[string]string {
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		raw, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[k] = hashutil.Checksum(raw)
	}
	return out
}

// escapePointer escapes a member name for use as a JSON pointer token
func escapePointer(name string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(name)
}

// writeAtomic replaces path with data through a temporary file in the same
// directory, keeping the existing file mode
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
