package contracts

import (
	"errors"
	"fmt"
)

const (
	DefaultSyncBacklog   = 3
	DefaultSyncDirectory = "/var/lib/mirror"
)

// ReleaseConfig identifies one release type of a project. Only Name and
// CreateTorrent matter to the sync engine; the remaining fields belong to
// the upstream promotion tooling and are carried so one config file serves
// both tools.
type ReleaseConfig struct {
	Name             string   `toml:"name"`
	VersionMetrics   []string `toml:"version_metrics"`
	SizeMetrics      []string `toml:"size_metrics"`
	AmountMetrics    []string `toml:"amount_metrics"`
	ExtensionsToSign []string `toml:"extensions_to_sign"`
	CreateTorrent    bool     `toml:"create_torrent"`
}

type SyncConfig struct {
	Backlog         int    `toml:"backlog"`
	Directory       string `toml:"directory"`
	LastUpdatedFile string `toml:"last_updated_file"`
	TempInSyncDir   *bool  `toml:"temp_in_sync_dir"`
}

// TempInSyncDirectory reports whether scratch space must be allocated
// inside the sync directory (the default), keeping downloads on the same
// filesystem as the mirror so the final relocation is a cheap rename.
func (this SyncConfig) TempInSyncDirectory() bool {
	return this.TempInSyncDir == nil || *this.TempInSyncDir
}

type ProjectConfig struct {
	Name        string          `toml:"name"`
	JobName     string          `toml:"job_name"`
	OutputDir   string          `toml:"output_dir"`
	MetricsFile string          `toml:"metrics_file"`
	Releases    []ReleaseConfig `toml:"releases"`
	SyncConfig  SyncConfig      `toml:"sync_config"`
}

type Projects struct {
	Projects   []ProjectConfig `toml:"projects"`
	SyncConfig SyncConfig      `toml:"sync_config"`
}

// ApplyDefaults merges the top-level sync config into each project's sync
// config and fills whatever remains with the implicit defaults. After this
// call every project carries a fully resolved SyncConfig and the engine
// never consults global state again.
func (this *Projects) ApplyDefaults() {
	for index := range this.Projects {
		project := &this.Projects[index]
		if project.SyncConfig.Backlog == 0 {
			project.SyncConfig.Backlog = this.SyncConfig.Backlog
		}
		if project.SyncConfig.Backlog == 0 {
			project.SyncConfig.Backlog = DefaultSyncBacklog
		}
		if project.SyncConfig.Directory == "" {
			project.SyncConfig.Directory = this.SyncConfig.Directory
		}
		if project.SyncConfig.Directory == "" {
			project.SyncConfig.Directory = DefaultSyncDirectory
		}
		if project.SyncConfig.LastUpdatedFile == "" {
			project.SyncConfig.LastUpdatedFile = this.SyncConfig.LastUpdatedFile
		}
		if project.SyncConfig.TempInSyncDir == nil {
			project.SyncConfig.TempInSyncDir = this.SyncConfig.TempInSyncDir
		}
	}
}

func (this *Projects) Validate() error {
	inventory := make(map[string]struct{}) // release type names must be unique across all projects

	for _, project := range this.Projects {
		if project.Name == "" {
			return errBlankProjectName
		}
		if project.JobName == "" {
			return fmt.Errorf("project %q: %w", project.Name, errBlankJobName)
		}
		if len(project.Releases) == 0 {
			return fmt.Errorf("project %q: %w", project.Name, errNoReleaseTypes)
		}
		for _, release := range project.Releases {
			if release.Name == "" {
				return fmt.Errorf("project %q: %w", project.Name, errBlankReleaseTypeName)
			}
			if _, found := inventory[release.Name]; found {
				return fmt.Errorf("release type name %q: %w", release.Name, errDuplicateReleaseType)
			}
			inventory[release.Name] = struct{}{}
		}
	}
	return nil
}

func (this *Projects) GetProject(name string) (ProjectConfig, error) {
	for _, project := range this.Projects {
		if project.Name == name {
			return project, nil
		}
	}
	return ProjectConfig{}, fmt.Errorf("no project configuration of the name %q can be found", name)
}

// Settings holds the upstream connection values sourced from env files and
// the process environment.
type Settings struct {
	UpstreamURL  string
	PrivateToken string
}

func (this Settings) Validate() error {
	if this.UpstreamURL == "" {
		return errBlankUpstreamURL
	}
	return nil
}

var (
	errBlankProjectName     = errors.New("project name should not be blank")
	errBlankJobName         = errors.New("job name should not be blank")
	errNoReleaseTypes       = errors.New("at least one release type is required")
	errBlankReleaseTypeName = errors.New("release type name should not be blank")
	errDuplicateReleaseType = errors.New("release type names must be unique")
	errBlankUpstreamURL     = errors.New("upstream url should not be blank")
)
