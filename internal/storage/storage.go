// Package storage persists encoded indexes to disk and loads them back.
// Writes are atomic: the encoded bytes go to a temporary file that is
// renamed over the target only after a successful sync, so a failed dump
// never leaves a partial index behind.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/invidx/invidx/internal/codec"
	"github.com/invidx/invidx/internal/index"
	"github.com/invidx/invidx/pkg/xerrors"
)

// Dump encodes idx with c and writes it to path.
func Dump(path string, idx *index.Index, c codec.Codec) error {
	data, err := c.Encode(idx)
	if err != nil {
		return fmt.Errorf("encoding index with %s codec: %w", c.Name(), err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating index directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	if err := writeFileSync(tmpPath, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing index file %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publishing index file %s: %w", path, err)
	}
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads the file at path and decodes it with c. A missing file maps
// to xerrors.ErrNotFound; malformed contents surface the codec's
// DecodeError.
func Load(path string, c codec.Codec) (*index.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("index file %s: %w", path, xerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("reading index file %s: %w", path, err)
	}
	idx, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading index file %s: %w", path, err)
	}
	return idx, nil
}
