package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// SnapshotWriter publishes documents atomically: the document is serialized
// to a temp file colocated with the target (same filesystem, so the rename
// is atomic) and renamed onto the target path. Readers of the target never
// observe a partially written document. The mutex serializes writers within
// the process; across processes the unique temp names plus atomic rename
// give the same guarantee.
type SnapshotWriter struct {
	mu sync.Mutex
}

// NewSnapshotWriter creates a SnapshotWriter.
func NewSnapshotWriter() *SnapshotWriter {
	return &SnapshotWriter{}
}

// Write serializes doc as pretty-printed JSON (slashes unescaped) and
// atomically publishes it at path, creating parent directories as needed.
// On any failure the target path is left untouched.
func (w *SnapshotWriter) Write(path string, doc any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "tmp_*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file %s: %w", tmpPath, err)
	}

	// Flush to disk before the rename so a crash cannot publish an empty
	// or truncated document.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temporary file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file %s: %w", tmpPath, err)
	}

	// CreateTemp files are 0600; the snapshot is read by the web server.
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temporary file %s: %w", tmpPath, err)
	}

	// The rename is the sole publish point.
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file to %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("Snapshot published")
	return nil
}
