package core

import (
	"fmt"
	"log"
	"path/filepath"

	"bitbucket.org/smartystreets/mirror/contracts"
)

type MoverFileSystem interface {
	contracts.FileChecker
	contracts.DirectoryCreator
	contracts.Deleter
	contracts.Renamer
}

// ReleaseMover relocates a validated, complete release type from a scratch
// location into the permanent mirror, replacing any stale prior copy.
type ReleaseMover struct {
	fileSystem MoverFileSystem
	syncDir    string
}

func NewReleaseMover(fileSystem MoverFileSystem, syncDir string) *ReleaseMover {
	return &ReleaseMover{fileSystem: fileSystem, syncDir: syncDir}
}

// MoveToSyncDir moves every file the release names from
// sourceBase/<name>/<name>-<version>/ into a fresh version directory under
// the mirror, then moves the torrent (if any) and the sidecar to the
// release-type directory root. The two-level placement is the mirror's
// on-disk contract.
func (this *ReleaseMover) MoveToSyncDir(release contracts.Release, sourceBase string) error {
	log.Printf("Moving release type '%s' version '%s' to '%s'...", release.Name, release.Version, this.syncDir)

	releaseTypeBase := filepath.Join(this.syncDir, release.Name)
	err := this.fileSystem.MkdirAll(releaseTypeBase)
	if err != nil {
		return err
	}

	versionDirName := ComposeVersionDirName(release.Name, release.Version)
	destination := filepath.Join(releaseTypeBase, versionDirName)
	err = this.removeStaleDestination(destination)
	if err != nil {
		return err
	}
	err = this.fileSystem.MkdirAll(destination)
	if err != nil {
		return err
	}

	sourceVersionDir := filepath.Join(sourceBase, release.Name, versionDirName)
	for _, file := range release.Files {
		err = this.fileSystem.Rename(filepath.Join(sourceVersionDir, file), filepath.Join(destination, file))
		if err != nil {
			return fmt.Errorf("could not move release file %q: %w", file, err)
		}
	}

	if release.TorrentFile != "" {
		torrentName := ComposeTorrentName(release.Name, release.Version)
		err = this.fileSystem.Rename(
			filepath.Join(sourceBase, release.Name, torrentName),
			filepath.Join(releaseTypeBase, torrentName),
		)
		if err != nil {
			return fmt.Errorf("could not move torrent file: %w", err)
		}
	}

	sidecarName := ComposeSidecarName(release.Name, release.Version)
	err = this.fileSystem.Rename(
		filepath.Join(sourceBase, release.Name, sidecarName),
		filepath.Join(releaseTypeBase, sidecarName),
	)
	if err != nil {
		return fmt.Errorf("could not move release sidecar: %w", err)
	}

	log.Println("Done!")
	return nil
}

// The move is not additive: stale partial content from a previous
// interrupted attempt must not linger under the destination.
func (this *ReleaseMover) removeStaleDestination(destination string) error {
	info, err := this.fileSystem.Stat(destination)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		return this.fileSystem.RemoveAll(destination)
	}
	return this.fileSystem.Delete(destination)
}
