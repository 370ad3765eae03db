package app

import "path/filepath"

// dirOf returns the directory containing path, for defaulting the include
// root to "wherever the scanned file lives".
func dirOf(path string) string {
	return filepath.Dir(path)
}

// baseName returns the final path element of path, used as the region name
// of the scanned file in diagnostics.
func baseName(path string) string {
	return filepath.Base(path)
}
