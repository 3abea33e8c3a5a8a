package core

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/smartystreets/mirror/contracts"
)

type OrchestratorFileSystem interface {
	contracts.FileChecker
	contracts.DirectoryLister
	contracts.DirectoryCreator
	contracts.FileWriter
	contracts.Deleter
}

type versionSyncer interface {
	SyncVersion(scratchBase, version string) (changed bool, err error)
}

type obsoletePruner interface {
	RemoveObsolete() (changed bool, err error)
}

type latestManager interface {
	SetLatestSymlink() (changed bool, err error)
}

// ProjectSynchronizer drives one full synchronization pass for a project:
// stale scratch cleanup, per-version sync, latest-pointer maintenance,
// pruning, and the change-timestamp notification. It assumes it is the
// only process synchronizing the project's sync directory; no inter-process
// lock is taken.
type ProjectSynchronizer struct {
	fileSystem  OrchestratorFileSystem
	syncer      versionSyncer
	pruner      obsoletePruner
	latest      latestManager
	projectName string
	config      contracts.SyncConfig
	promoted    []string
	now         func() time.Time
}

func NewProjectSynchronizer(
	fileSystem OrchestratorFileSystem,
	syncer versionSyncer,
	pruner obsoletePruner,
	latest latestManager,
	projectName string,
	config contracts.SyncConfig,
	promoted []string,
	now func() time.Time,
) *ProjectSynchronizer {
	return &ProjectSynchronizer{
		fileSystem:  fileSystem,
		syncer:      syncer,
		pruner:      pruner,
		latest:      latest,
		projectName: projectName,
		config:      config,
		promoted:    promoted,
		now:         now,
	}
}

// Sync performs one pass. A failure in one version's sync is logged and
// skipped so other versions' already-synchronized state is unaffected;
// failures in the latest-pointer manager or the pruner abort the pass.
func (this *ProjectSynchronizer) Sync() error {
	log.Printf("Synchronizing release versions for %s: %s",
		this.projectName, strings.Join(this.promoted, ", "))

	err := this.fileSystem.MkdirAll(this.config.Directory)
	if err != nil {
		return fmt.Errorf("could not create sync directory %q: %w", this.config.Directory, err)
	}

	err = this.removeStaleScratch()
	if err != nil {
		return err
	}

	scratchRoot, err := CreateScratchDir(this.fileSystem, this.scratchParent())
	if err != nil {
		return err
	}
	defer func() { _ = RemoveScratchDir(this.fileSystem, scratchRoot) }()

	changed := false
	for _, version := range this.promoted {
		versionChanged, err := this.syncer.SyncVersion(scratchRoot, version)
		if err != nil {
			log.Printf("[WARN] Failed to synchronize release version %s: %s", version, err)
			continue
		}
		changed = changed || versionChanged
	}

	latestChanged, err := this.latest.SetLatestSymlink()
	if err != nil {
		return err
	}
	pruneChanged, err := this.pruner.RemoveObsolete()
	if err != nil {
		return err
	}

	if changed || latestChanged || pruneChanged {
		return this.recordLastUpdate()
	}
	return nil
}

// scratchParent decides which filesystem downloads land on: inside the
// sync directory (so the final relocation stays a same-filesystem rename)
// or the generic temporary area.
func (this *ProjectSynchronizer) scratchParent() string {
	if this.config.TempInSyncDirectory() {
		return this.config.Directory
	}
	return ""
}

// removeStaleScratch discards scratch directories left over from a crashed
// prior run, recognized by the reserved name prefix.
func (this *ProjectSynchronizer) removeStaleScratch() error {
	entries, err := this.fileSystem.ReadDir(this.config.Directory)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !strings.HasPrefix(filepath.Base(entry.Path()), ScratchPrefix) {
			continue
		}
		log.Printf("Removing pre-existing temporary directory: %s", entry.Path())
		err = RemoveScratchDir(this.fileSystem, entry.Path())
		if err != nil {
			return err
		}
	}
	return nil
}

func (this *ProjectSynchronizer) recordLastUpdate() error {
	if this.config.LastUpdatedFile == "" {
		return nil
	}
	log.Printf("Updating timestamp in %s...", this.config.LastUpdatedFile)
	timestamp := strconv.FormatInt(this.now().Unix(), 10)
	err := this.fileSystem.WriteFile(this.config.LastUpdatedFile, []byte(timestamp+"\n"))
	if err != nil {
		return fmt.Errorf("could not write last-updated file: %w", err)
	}
	log.Println("Done!")
	return nil
}
