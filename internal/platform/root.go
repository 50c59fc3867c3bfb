package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultRecordFile is the record file used when no URI is given.
const DefaultRecordFile = "portal.json"

// FindRecordFile looks for name in startDir and then upwards.
// Absolute names are returned as they are when they exist.
// If found, returns the absolute path to the file.
func FindRecordFile(startDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("record file not found: %s", name)
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("record file %s not found above %s", name, abs)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
