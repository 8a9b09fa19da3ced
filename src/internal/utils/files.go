package utils

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/ipfeeds/listgen/src/internal/log"
)

func CloseOrWarn(file io.Closer) {
	if err := file.Close(); err != nil {
		log.Warnf("Failed to close file: %v", err)
	}
}

// RemoveOrWarn deletes path, ignoring files that are already gone.
func RemoveOrWarn(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("Failed to remove %s: %v", path, err)
	}
}
