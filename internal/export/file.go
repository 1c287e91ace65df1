package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteFile writes table into dir under a timestamped name and returns the file path.
func WriteFile(dir, entity string, format Format, table Table, now time.Time) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path = filepath.Join(dir, Filename(entity, format, now))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := Write(f, format, table); err != nil {
		return "", err
	}
	return path, nil
}
