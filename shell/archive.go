package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archiver"
)

// BundleArchive packs and unpacks release bundles. The archive format is
// derived from the file extension, as upstream bundles are plain zip files.
type BundleArchive struct{}

func NewBundleArchive() *BundleArchive {
	return &BundleArchive{}
}

// Extract unpacks an archive into its parent directory, preserving the
// bundle's internal layout.
func (this *BundleArchive) Extract(archivePath string) error {
	err := archiver.Unarchive(archivePath, filepath.Dir(archivePath))
	if err != nil {
		return fmt.Errorf("could not extract archive %q: %w", archivePath, err)
	}
	return nil
}

var archiveExtensions = map[string]string{
	"zip":     ".zip",
	"tar":     ".tar",
	"tar.gz":  ".tar.gz",
	"tar.bz2": ".tar.bz2",
	"tar.xz":  ".tar.xz",
}

// Archive packs the contents of sourceDir (not the directory itself) into
// a single file written to sourceDir's parent. An empty output name or an
// unknown format is a configuration error, never silently corrected.
func (this *BundleArchive) Archive(sourceDir, outputName, format string) (string, error) {
	if outputName == "" {
		return "", errBlankArchiveName
	}
	extension, known := archiveExtensions[format]
	if !known {
		return "", fmt.Errorf("%w: %s", errUnknownArchiveFormat, format)
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return "", err
	}
	sources := make([]string, 0, len(entries))
	for _, entry := range entries {
		sources = append(sources, filepath.Join(sourceDir, entry.Name()))
	}

	output := filepath.Join(filepath.Dir(sourceDir), outputName+extension)
	return output, archiver.Archive(sources, output)
}

var (
	errBlankArchiveName     = errors.New("the archive name has to be at least one character long")
	errUnknownArchiveFormat = errors.New("unknown archive format")
)
