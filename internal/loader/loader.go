// Package loader reads tab-separated document collections into memory.
// Each input line is "<docID>\t<text>"; the whole collection is loaded
// once, handed to the index builder, and discarded.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/invidx/invidx/internal/index"
	"github.com/invidx/invidx/pkg/xerrors"
)

// maxLineSize bounds a single document line. Wikipedia-style abstract
// dumps carry whole articles on one line, so the default scanner buffer is
// far too small.
const maxLineSize = 16 * 1024 * 1024

// Load reads the dataset at path into a document map. It fails on a
// missing tab separator, a non-positive or non-numeric document ID, or a
// duplicate ID; a missing file maps to xerrors.ErrNotFound.
func Load(path string) (map[index.DocID]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dataset %s: %w", path, xerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	docs := make(map[index.DocID]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		rawID, text, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("dataset %s line %d: missing tab separator", path, lineNo)
		}
		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("dataset %s line %d: invalid document ID %q", path, lineNo, rawID)
		}
		if _, dup := docs[index.DocID(id)]; dup {
			return nil, fmt.Errorf("dataset %s line %d: duplicate document ID %d", path, lineNo, id)
		}
		docs[index.DocID(id)] = text
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return docs, nil
}

// Resolve joins a relative path onto baseDir. Absolute paths and an empty
// baseDir pass through unchanged; base-directory resolution is always an
// explicit parameter, never process state.
func Resolve(baseDir, path string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
