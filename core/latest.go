package core

import (
	"log"
	"path/filepath"

	"bitbucket.org/smartystreets/mirror/contracts"
)

type LatestFileSystem interface {
	contracts.FileChecker
	contracts.Deleter
	contracts.SymlinkCreator
}

// LatestManager maintains the single 'latest' indirection entry per release
// type, encoded as a symlink whose target is the version directory's base
// name. Version strings are compared as plain strings: callers must supply
// comparably ordered tags.
type LatestManager struct {
	fileSystem LatestFileSystem
	syncDir    string
	releases   []contracts.ReleaseConfig
	retained   []string
}

func NewLatestManager(
	fileSystem LatestFileSystem,
	syncDir string,
	releases []contracts.ReleaseConfig,
	retained []string,
) *LatestManager {
	return &LatestManager{fileSystem: fileSystem, syncDir: syncDir, releases: releases, retained: retained}
}

// SetLatestSymlink points every release type's 'latest' entry at the
// greatest retained version, replacing a pointer that targets anything
// else or that degraded into a plain file or directory. Returns true if
// any pointer was created or replaced. An empty retained set leaves
// pre-existing pointers untouched.
func (this *LatestManager) SetLatestSymlink() (changed bool, err error) {
	if len(this.retained) == 0 {
		return false, nil
	}
	latestVersion := greatestVersion(this.retained)

	for _, releaseType := range this.releases {
		link := filepath.Join(this.syncDir, releaseType.Name, LatestName)
		target := ComposeVersionDirName(releaseType.Name, latestVersion)
		log.Printf("Establishing '%s' as latest release version for '%s'...", latestVersion, releaseType.Name)

		current, statErr := this.fileSystem.Stat(link)
		if statErr == nil {
			if current.Symlink() == target {
				continue
			}
			err = this.removeDegradedPointer(current, link)
			if err != nil {
				return changed, err
			}
		}

		err = this.fileSystem.CreateSymlink(target, link)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	if len(this.releases) > 0 {
		log.Println("Done!")
	}
	return changed, nil
}

func (this *LatestManager) removeDegradedPointer(current contracts.FileInfo, link string) error {
	if current.Symlink() == "" && current.IsDir() {
		return this.fileSystem.RemoveAll(link)
	}
	return this.fileSystem.Delete(link)
}

func greatestVersion(versions []string) (greatest string) {
	for _, version := range versions {
		if version > greatest {
			greatest = version
		}
	}
	return greatest
}
