package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"bitbucket.org/smartystreets/mirror/contracts"
)

// ScratchPrefix marks every temporary directory this engine creates. The
// prefix is load-bearing: stale-scratch cleanup only sweeps entries bearing
// it, and RemoveScratchDir refuses to remove anything without it.
const ScratchPrefix = ".tmp-mirror-"

type ScratchFileSystem interface {
	contracts.FileChecker
	contracts.DirectoryCreator
	contracts.Deleter
}

// CreateScratchDir creates a uniquely named scratch directory under parent.
// An empty parent places the directory in the operating system's temporary
// area instead.
func CreateScratchDir(fileSystem contracts.DirectoryCreator, parent string) (string, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	path := filepath.Join(parent, ScratchPrefix+uuid.NewString())
	err := fileSystem.MkdirAll(path)
	if err != nil {
		return "", fmt.Errorf("could not create scratch directory: %w", err)
	}
	return path, nil
}

// RemoveScratchDir removes a scratch directory recursively. It fails loudly
// when asked to remove a path that is not a directory or whose name lacks
// the scratch prefix.
func RemoveScratchDir(fileSystem ScratchFileSystem, path string) error {
	if !strings.HasPrefix(filepath.Base(path), ScratchPrefix) {
		return fmt.Errorf("%w: %s", errScratchPrefixMissing, path)
	}
	info, err := fileSystem.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", errScratchNotADirectory, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", errScratchNotADirectory, path)
	}
	return fileSystem.RemoveAll(path)
}

var (
	errScratchPrefixMissing = errors.New("refusing to remove a directory not created by this tool")
	errScratchNotADirectory = errors.New("the path to remove is not a directory")
)
