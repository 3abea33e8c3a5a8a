package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"bitbucket.org/smartystreets/mirror/contracts"
	"bitbucket.org/smartystreets/mirror/core"
	"bitbucket.org/smartystreets/mirror/shell"
)

type SyncApp struct {
	projects   contracts.Projects
	settings   contracts.Settings
	fileSystem *shell.DiskFileSystem
	extractor  *shell.BundleArchive
	client     *http.Client
}

func NewSyncApp(projects contracts.Projects, settings contracts.Settings) *SyncApp {
	return &SyncApp{
		projects:   projects,
		settings:   settings,
		fileSystem: shell.NewDiskFileSystem(),
		extractor:  shell.NewBundleArchive(),
		client:     shell.NewHTTPClient(),
	}
}

// Run synchronizes every configured project. Projects own disjoint sync
// directories, so they proceed concurrently; within a project the pass is
// strictly sequential.
func (this *SyncApp) Run() (failed int) {
	var group errgroup.Group
	for _, project := range this.projects.Projects {
		project := project
		group.Go(func() error { return this.syncProject(project) })
	}
	err := group.Wait()
	if err != nil {
		log.Println("[WARN]", err)
		return 1
	}
	return 0
}

func (this *SyncApp) syncProject(project contracts.ProjectConfig) error {
	upstream := shell.NewGitLabUpstream(this.client, this.settings.UpstreamURL, this.settings.PrivateToken, project.Name)
	promoted, err := upstream.ListPromotedReleases(project.SyncConfig.Backlog)
	if err != nil {
		return fmt.Errorf("project %q: %w", project.Name, err)
	}

	syncDir := project.SyncConfig.Directory
	checker := core.NewSyncStateChecker(this.fileSystem, syncDir, project.Releases)
	mover := core.NewReleaseMover(this.fileSystem, syncDir)
	syncer := core.NewVersionSyncer(this.fileSystem, upstream, this.extractor, checker, mover, project)
	pruner := core.NewObsoletePruner(this.fileSystem, syncDir, project.Releases, promoted)
	latest := core.NewLatestManager(this.fileSystem, syncDir, project.Releases, promoted)

	orchestrator := core.NewProjectSynchronizer(
		this.fileSystem, syncer, pruner, latest,
		project.Name, project.SyncConfig, promoted, time.Now)

	err = orchestrator.Sync()
	if err != nil {
		return fmt.Errorf("project %q: %w", project.Name, err)
	}
	return nil
}
