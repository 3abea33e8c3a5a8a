package core

import (
	"log"
	"path/filepath"

	"bitbucket.org/smartystreets/mirror/contracts"
)

type PrunerFileSystem interface {
	contracts.FileChecker
	contracts.DirectoryLister
	contracts.Deleter
}

// ObsoletePruner removes mirror entries that are not part of the retained
// backlog. This is a set-difference prune: correctness depends on the
// caller supplying an accurate, already-bounded list of retained versions.
type ObsoletePruner struct {
	fileSystem PrunerFileSystem
	syncDir    string
	releases   []contracts.ReleaseConfig
	retained   []string
}

func NewObsoletePruner(
	fileSystem PrunerFileSystem,
	syncDir string,
	releases []contracts.ReleaseConfig,
	retained []string,
) *ObsoletePruner {
	return &ObsoletePruner{fileSystem: fileSystem, syncDir: syncDir, releases: releases, retained: retained}
}

// RemoveObsolete deletes, for every release type, any entry not in the
// expected set: the latest pointer, one version directory per retained
// version, and one sidecar and torrent name per retained version. The
// torrent name is expected even for release types without torrents; names
// that never existed are simply skipped. Returns true if anything was
// deleted.
func (this *ObsoletePruner) RemoveObsolete() (changed bool, err error) {
	if len(this.retained) == 0 {
		return false, nil
	}

	for _, releaseType := range this.releases {
		releaseTypeDir := filepath.Join(this.syncDir, releaseType.Name)
		if _, statErr := this.fileSystem.Stat(releaseTypeDir); statErr != nil {
			continue // never synchronized, nothing to prune
		}
		log.Printf("Removing obsolete release files from '%s'...", releaseTypeDir)

		expected := this.expectedNames(releaseType.Name)
		entries, err := this.fileSystem.ReadDir(releaseTypeDir)
		if err != nil {
			return changed, err
		}
		for _, entry := range entries {
			name := filepath.Base(entry.Path())
			if _, found := expected[name]; found {
				continue
			}
			err = this.remove(entry)
			if err != nil {
				return changed, err
			}
			changed = true
		}
		log.Println("Done!")
	}
	return changed, nil
}

func (this *ObsoletePruner) expectedNames(releaseTypeName string) map[string]struct{} {
	expected := map[string]struct{}{LatestName: {}}
	for _, version := range this.retained {
		expected[ComposeVersionDirName(releaseTypeName, version)] = struct{}{}
		expected[ComposeSidecarName(releaseTypeName, version)] = struct{}{}
		expected[ComposeTorrentName(releaseTypeName, version)] = struct{}{}
	}
	return expected
}

func (this *ObsoletePruner) remove(entry contracts.FileInfo) error {
	if entry.IsDir() {
		log.Printf("Removing directory '%s'", entry.Path())
		return this.fileSystem.RemoveAll(entry.Path())
	}
	log.Printf("Removing file '%s'", entry.Path())
	return this.fileSystem.Delete(entry.Path())
}
