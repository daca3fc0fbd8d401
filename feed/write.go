package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Output is one document and the path it is written to
type Output struct {
	Path string
	Doc  any
}

// EnsureAbsent fails with ErrOutputExists if any path is already taken
func EnsureAbsent(paths ...string) error {
	for _, p := range paths {
		_, err := os.Lstat(p)
		if err == nil {
			return fmt.Errorf("%s %w", p, ErrOutputExists)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// WriteFiles encodes every document, then creates each file exclusively.
// On failure the files already created by this call are removed.
func WriteFiles(outputs ...Output) error {
	encoded := make([][]byte, len(outputs))
	for i, out := range outputs {
		b, err := json.MarshalIndent(out.Doc, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", out.Path, err)
		}
		encoded[i] = append(b, '\n')
	}

	var written []string
	for i, out := range outputs {
		if err := writeExclusive(out.Path, encoded[i]); err != nil {
			for _, p := range written {
				_ = os.Remove(p)
			}
			return err
		}
		written = append(written, out.Path)
	}
	return nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s %w", path, ErrOutputExists)
	}
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
