package tramagrid

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tramagrid/tramagrid/imageutil"
)

// Blob names used by Chart.Save and Chart.Load.
const (
	stateBlob    = "state.bin"
	originalBlob = "original.png"
)

// BlobStore stores named blobs grouped by chart id. Get returns an error
// wrapping ErrNotFound for missing blobs.
type BlobStore interface {
	Put(id, name string, data []byte) error
	Get(id, name string) ([]byte, error)
	Delete(id string) error
}

// FileStore is a BlobStore keeping each blob in <root>/<id>/<name>.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

func (s *FileStore) path(id, name string) (string, error) {
	for _, part := range []string{id, name} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, part)
		}
	}
	return filepath.Join(s.root, id, name), nil
}

// Put writes data, replacing any previous blob of the same name.
func (s *FileStore) Put(id, name string, data []byte) error {
	p, err := s.path(id, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return multierr.Append(fmt.Errorf("replace %s: %w", name, err), os.Remove(tmp))
	}
	return nil
}

// Get reads a blob.
func (s *FileStore) Get(id, name string) ([]byte, error) {
	p, err := s.path(id, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", id, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Delete removes every blob stored for id. Deleting an unknown id is not
// an error.
func (s *FileStore) Delete(id string) error {
	p, err := s.path(id, stateBlob)
	if err != nil {
		return err
	}
	return os.RemoveAll(filepath.Dir(p))
}

// Save writes the chart state and, unless lite is set, the source image.
// A lite save leaves any previously stored source image in place. Both
// writes are attempted; their errors are combined.
func (c *Chart) Save(store BlobStore, id string, lite bool) error {
	state, err := c.MarshalState()
	if err != nil {
		return err
	}
	err = store.Put(id, stateBlob, state)

	if !lite && c.source != nil {
		if png, encErr := imageutil.PNGBytes(c.source); encErr != nil {
			err = multierr.Append(err, fmt.Errorf("encode source image: %w", encErr))
		} else {
			err = multierr.Append(err, store.Put(id, originalBlob, png))
		}
	}
	if err != nil {
		return fmt.Errorf("save chart %s: %w", id, err)
	}
	c.log.Debug("saved chart",
		zap.String("id", id),
		zap.Bool("lite", lite),
		zap.Int("state_bytes", len(state)))
	return nil
}

// Load replaces the chart with the one stored under id. A missing source
// image is not an error: the chart can still be edited and exported, but
// not regenerated.
func (c *Chart) Load(store BlobStore, id string) error {
	state, err := store.Get(id, stateBlob)
	if err != nil {
		return err
	}
	var src *imageutil.RGBAImage
	data, err := store.Get(id, originalBlob)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	default:
		if src, err = imageutil.Decode(data); err != nil {
			return fmt.Errorf("load chart %s: %w", id, err)
		}
	}
	if err := c.UnmarshalState(state); err != nil {
		return fmt.Errorf("load chart %s: %w", id, err)
	}
	c.source = src
	c.log.Debug("loaded chart",
		zap.String("id", id),
		zap.Bool("source", src != nil))
	return nil
}
