package field

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/matsen/wavefield/internal/wave"
)

// saveRetries bounds how many times a single save is attempted before giving
// up and leaving the field dirty for the next write.
const saveRetries = 3

// document is the persisted shape of a field.
type document struct {
	Patterns   orderedPatterns `json:"patterns"`
	Statistics statistics      `json:"statistics"`
	Timestamp  float64         `json:"timestamp"`
}

type statistics struct {
	SearchCount     int64 `json:"search_count"`
	AbsorptionCount int64 `json:"absorption_count"`
	Sequence        int   `json:"sequence"`
}

// orderedPatterns marshals the id-to-pattern map as a JSON object whose keys
// appear in insertion order, and recovers that order when decoding. Plain Go
// maps would lose it, and insertion order is what breaks search ties.
type orderedPatterns struct {
	order []string
	items map[string]*wave.Pattern
}

func (op orderedPatterns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range op.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(op.items[id])
		if err != nil {
			return nil, fmt.Errorf("encoding pattern %s: %w", id, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (op *orderedPatterns) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("patterns: expected object, got %v", tok)
	}

	op.items = make(map[string]*wave.Pattern)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("patterns: expected string key, got %v", keyTok)
		}

		var p wave.Pattern
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("decoding pattern %s: %w", id, err)
		}
		if _, exists := op.items[id]; !exists {
			op.order = append(op.order, id)
		}
		op.items[id] = &p
	}

	if _, err := dec.Token(); err != nil { // closing brace
		return err
	}
	return nil
}

// Save writes the field to path atomically: marshal under the read lock,
// then temp file plus rename so a crash never leaves a torn document.
func (f *Field) Save(path string) error {
	f.mu.RLock()
	doc := document{
		Patterns: orderedPatterns{order: f.order, items: f.patterns},
		Statistics: statistics{
			SearchCount:     f.searchCount.Load(),
			AbsorptionCount: f.absorptionCount.Load(),
			Sequence:        f.seq,
		},
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	f.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding field: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating field directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	f.dirty.Store(false)
	return nil
}

// saveIfDirty persists to the configured path after a mutation. Failures are
// logged, not returned: the in-memory field stays authoritative and the next
// write retries.
func (f *Field) saveIfDirty() {
	if f.path == "" || !f.dirty.Load() {
		return
	}

	var err error
	for attempt := 1; attempt <= saveRetries; attempt++ {
		if err = f.Save(f.path); err == nil {
			return
		}
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	f.logger.Warn("field save failed, in-memory state remains authoritative",
		"path", f.path, "error", err)
}

// Flush saves immediately when the field has unsaved changes.
func (f *Field) Flush() error {
	if f.path == "" || !f.dirty.Load() {
		return nil
	}
	return f.Save(f.path)
}

// Load reads a persisted field document from path.
func Load(path string, opts ...Option) (*Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding field: %w", err)
	}

	f := New(opts...)
	if doc.Patterns.items != nil {
		f.patterns = doc.Patterns.items
	}
	f.order = doc.Patterns.order
	f.seq = doc.Statistics.Sequence
	f.searchCount.Store(doc.Statistics.SearchCount)
	f.absorptionCount.Store(doc.Statistics.AbsorptionCount)
	return f, nil
}

// LoadOrEmpty loads the field at path, falling back to an empty field with a
// warning when the file is missing, unreadable or corrupt. Startup never
// fails on a bad field document.
func LoadOrEmpty(path string, logger *slog.Logger, opts ...Option) *Field {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := Load(path, opts...)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("field load failed, starting empty", "path", path, "error", err)
		}
		return New(opts...)
	}
	return f
}
