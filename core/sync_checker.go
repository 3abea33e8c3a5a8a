package core

import (
	"path/filepath"

	"bitbucket.org/smartystreets/mirror/contracts"
)

type SyncStateFileSystem interface {
	contracts.FileChecker
	contracts.FileReader
}

// SyncStateChecker decides whether the mirror already holds every expected
// file for a release type at a version. Checks are purely existence-based;
// content integrity is the concern of the upstream signing step, not the
// mirror.
type SyncStateChecker struct {
	fileSystem SyncStateFileSystem
	syncDir    string
	releases   []contracts.ReleaseConfig
}

func NewSyncStateChecker(
	fileSystem SyncStateFileSystem,
	syncDir string,
	releases []contracts.ReleaseConfig,
) *SyncStateChecker {
	return &SyncStateChecker{fileSystem: fileSystem, syncDir: syncDir, releases: releases}
}

// IsReleaseTypeSynced returns true only when the sidecar, the declared
// torrent (if any), and every file the sidecar names are all present. An
// absent or unreadable sidecar means a sync was never attempted or was
// interrupted; either way the version is re-synced.
func (this *SyncStateChecker) IsReleaseTypeSynced(name, version string) bool {
	releaseBase := filepath.Join(this.syncDir, name)
	sidecarPath := filepath.Join(releaseBase, ComposeSidecarName(name, version))
	if !this.exists(sidecarPath) {
		return false
	}

	release, err := LoadRelease(this.fileSystem, sidecarPath)
	if err != nil {
		return false
	}

	if release.TorrentFile != "" && !this.exists(filepath.Join(releaseBase, release.TorrentFile)) {
		return false
	}

	versionDir := filepath.Join(releaseBase, ComposeVersionDirName(name, version))
	for _, file := range release.Files {
		if !this.exists(filepath.Join(versionDir, file)) {
			return false
		}
	}
	return true
}

// RequiresSync reports whether any configured release type at the given
// version is incomplete. A version counts as mirrored only when every one
// of its release types is complete.
func (this *SyncStateChecker) RequiresSync(version string) bool {
	for _, release := range this.releases {
		if !this.IsReleaseTypeSynced(release.Name, version) {
			return true
		}
	}
	return false
}

func (this *SyncStateChecker) exists(path string) bool {
	_, err := this.fileSystem.Stat(path)
	return err == nil
}
