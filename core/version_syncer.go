package core

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"bitbucket.org/smartystreets/mirror/contracts"
)

type VersionSyncerFileSystem interface {
	contracts.FileChecker
	contracts.DirectoryLister
	contracts.FileReader
	contracts.FileWriter
	contracts.Renamer
	contracts.Deleter
	contracts.DirectoryCreator
}

type syncProbe interface {
	RequiresSync(version string) bool
}

type releaseMover interface {
	MoveToSyncDir(release contracts.Release, sourceBase string) error
}

// VersionSyncer performs the per-version unit of work: a cheap completeness
// probe driven by the promotion bundle, then a full build-bundle re-fetch
// only when the probe finds the mirror incomplete. The split keeps repeated
// passes inexpensive once the mirror has caught up.
type VersionSyncer struct {
	fileSystem VersionSyncerFileSystem
	upstream   contracts.ArtifactDownloader
	extractor  contracts.ArchiveExtractor
	probe      syncProbe
	mover      releaseMover
	project    contracts.ProjectConfig
}

func NewVersionSyncer(
	fileSystem VersionSyncerFileSystem,
	upstream contracts.ArtifactDownloader,
	extractor contracts.ArchiveExtractor,
	probe syncProbe,
	mover releaseMover,
	project contracts.ProjectConfig,
) *VersionSyncer {
	return &VersionSyncer{
		fileSystem: fileSystem,
		upstream:   upstream,
		extractor:  extractor,
		probe:      probe,
		mover:      mover,
		project:    project,
	}
}

// SyncVersion downloads and unpacks the promotion bundle for version into a
// nested scratch directory, returns false when the mirror is already
// complete, and otherwise fetches the build bundle, merges the promotion
// metadata into it, validates the result, and hands each release type to
// the mover. Returns true when the mirror was changed.
func (this *VersionSyncer) SyncVersion(scratchBase, version string) (changed bool, err error) {
	promotionDir, err := CreateScratchDir(this.fileSystem, scratchBase)
	if err != nil {
		return false, err
	}
	defer func() { _ = RemoveScratchDir(this.fileSystem, promotionDir) }()

	err = this.downloadAndExtractPromotion(version, promotionDir)
	if err != nil {
		return false, err
	}

	if !this.probe.RequiresSync(version) {
		log.Printf("Release version %s is already fully synchronized", version)
		return false, nil
	}

	buildDir, err := CreateScratchDir(this.fileSystem, scratchBase)
	if err != nil {
		return false, err
	}
	defer func() { _ = RemoveScratchDir(this.fileSystem, buildDir) }()

	err = this.downloadAndExtractBuild(version, buildDir)
	if err != nil {
		return false, err
	}

	releases, err := this.discoverReleases(promotionDir)
	if err != nil {
		return false, err
	}

	buildOutput := filepath.Join(buildDir, this.project.OutputDir)
	for _, release := range releases {
		err = this.mergePromotionArtifacts(release, promotionDir, buildOutput)
		if err != nil {
			return false, err
		}
		err = this.validateReleaseFiles(release, buildOutput)
		if err != nil {
			return false, err
		}
		err = this.mover.MoveToSyncDir(release, buildOutput)
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

func (this *VersionSyncer) downloadAndExtractPromotion(version, directory string) error {
	log.Printf("Downloading promotion artifact of release %s...", version)
	archivePath, err := this.upstream.DownloadPromotionArtifact(version, directory)
	if err != nil {
		return fmt.Errorf("could not download promotion artifact for release %q: %w", version, err)
	}
	return this.extractor.Extract(archivePath)
}

func (this *VersionSyncer) downloadAndExtractBuild(version, directory string) error {
	log.Printf("Downloading build artifacts of release %s...", version)
	archivePath, err := this.upstream.DownloadBuildArtifact(version, directory, this.project.JobName)
	if err != nil {
		return fmt.Errorf("could not download build artifact for release %q: %w", version, err)
	}
	return this.extractor.Extract(archivePath)
}

// discoverReleases finds one sidecar per release type among the unpacked
// promotion bundle (<type>/<type>-<version>.json).
func (this *VersionSyncer) discoverReleases(promotionDir string) (releases []contracts.Release, err error) {
	entries, err := this.fileSystem.ReadDir(promotionDir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		children, err := this.fileSystem.ReadDir(entry.Path())
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if child.IsDir() || !strings.HasSuffix(child.Path(), ".json") {
				continue
			}
			release, err := LoadRelease(this.fileSystem, child.Path())
			if err != nil {
				return nil, err
			}
			releases = append(releases, release)
		}
	}
	return releases, nil
}

// mergePromotionArtifacts copies detached signatures from the promotion
// output into the build output and relocates the torrent file (if
// declared) and the sidecar. Relocation is a rename, not a copy: the
// promotion scratch directory is single-use.
func (this *VersionSyncer) mergePromotionArtifacts(
	release contracts.Release,
	sourceBase, destinationBase string,
) error {
	versionDirName := ComposeVersionDirName(release.Name, release.Version)
	sourceVersionDir := filepath.Join(sourceBase, release.Name, versionDirName)
	destinationVersionDir := filepath.Join(destinationBase, release.Name, versionDirName)

	err := this.copySignatures(sourceVersionDir, destinationVersionDir)
	if err != nil {
		return err
	}

	if release.TorrentFile != "" {
		err = this.fileSystem.Rename(
			filepath.Join(sourceBase, release.Name, release.TorrentFile),
			filepath.Join(destinationBase, release.Name, release.TorrentFile),
		)
		if err != nil {
			return fmt.Errorf("could not relocate torrent file for release type %q: %w", release.Name, err)
		}
	}

	sidecarName := ComposeSidecarName(release.Name, release.Version)
	err = this.fileSystem.Rename(
		filepath.Join(sourceBase, release.Name, sidecarName),
		filepath.Join(destinationBase, release.Name, sidecarName),
	)
	if err != nil {
		return fmt.Errorf("could not relocate release sidecar for release type %q: %w", release.Name, err)
	}
	return nil
}

func (this *VersionSyncer) copySignatures(source, destination string) error {
	entries, err := this.fileSystem.ReadDir(source)
	if err != nil {
		return err
	}
	err = this.fileSystem.MkdirAll(destination)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Path(), ".sig") {
			continue
		}
		raw, err := this.fileSystem.ReadFile(entry.Path())
		if err != nil {
			return err
		}
		err = this.fileSystem.WriteFile(filepath.Join(destination, filepath.Base(entry.Path())), raw)
		if err != nil {
			return err
		}
	}
	return nil
}

// validateReleaseFiles asserts that the merged build output now holds the
// sidecar, the declared torrent, and every file the release names. A
// missing entry is fatal for the version: it indicates a partially
// uploaded promotion artifact, not a soft condition.
func (this *VersionSyncer) validateReleaseFiles(release contracts.Release, base string) error {
	log.Printf("Validating release type '%s' version '%s'...", release.Name, release.Version)

	sidecar := filepath.Join(release.Name, ComposeSidecarName(release.Name, release.Version))
	if !this.exists(filepath.Join(base, sidecar)) {
		return fmt.Errorf("%w: %s", errIncompleteRelease, sidecar)
	}

	if release.TorrentFile != "" {
		torrent := filepath.Join(release.Name, ComposeTorrentName(release.Name, release.Version))
		if !this.exists(filepath.Join(base, torrent)) {
			return fmt.Errorf("%w: %s", errIncompleteRelease, torrent)
		}
	}

	versionDirName := ComposeVersionDirName(release.Name, release.Version)
	for _, file := range release.Files {
		path := filepath.Join(release.Name, versionDirName, file)
		if !this.exists(filepath.Join(base, path)) {
			return fmt.Errorf("%w: %s", errIncompleteRelease, path)
		}
	}

	log.Println("Done!")
	return nil
}

func (this *VersionSyncer) exists(path string) bool {
	_, err := this.fileSystem.Stat(path)
	return err == nil
}

var errIncompleteRelease = errors.New("release file does not exist after merge")
