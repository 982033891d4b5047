package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrConfigNotFound is returned by FindConfigFile when no directory up to
// the filesystem root holds a config file.
var ErrConfigNotFound = errors.New("config file not found")

// FindConfigFile looks upwards from startDir for one of ConfigFileNames and
// returns its absolute path. A .git directory ends the search at that level.
func FindConfigFile(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range ConfigFileNames {
			if hasFile(dir, name) {
				return filepath.Join(dir, name), nil
			}
		}
		if hasFile(dir, ".git") {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrConfigNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
