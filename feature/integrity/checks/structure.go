package checks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// RequiredFiles lists the files every documentation bundle must provide.
var RequiredFiles = []string{
	"index.html",
}

// CheckDirectory verifies that dir exists, is a directory and can be listed.
func CheckDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("asset directory %s does not exist", dir)
		}
		return fmt.Errorf("failed to stat asset directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset directory %s is not a directory", dir)
	}
	if _, err := os.ReadDir(dir); err != nil {
		return fmt.Errorf("asset directory %s is not readable: %w", dir, err)
	}
	return nil
}

// CheckStructure returns the required files missing from fsys.
func CheckStructure(fsys fs.FS) ([]string, error) {
	var missing []string

	for _, name := range RequiredFiles {
		info, err := fs.Stat(fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, name)
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		if info.IsDir() {
			missing = append(missing, name)
		}
	}

	return missing, nil
}
