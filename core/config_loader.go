package core

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"bitbucket.org/smartystreets/mirror/contracts"
)

const (
	upstreamURLKey  = "UPSTREAM_URL"
	privateTokenKey = "PRIVATE_TOKEN"
)

// ConfigLoader reads the projects TOML file and the env-file-layered
// upstream settings. Both results are constructed once and passed into the
// engine as immutable values.
type ConfigLoader struct {
	storage contracts.FileReader
	env     contracts.Environment
}

func NewConfigLoader(storage contracts.FileReader, env contracts.Environment) *ConfigLoader {
	return &ConfigLoader{storage: storage, env: env}
}

func (this *ConfigLoader) LoadProjects(path string) (projects contracts.Projects, err error) {
	raw, err := this.storage.ReadFile(path)
	if err != nil {
		return contracts.Projects{}, fmt.Errorf("could not read projects configuration: %w", err)
	}
	err = toml.Unmarshal(raw, &projects)
	if err != nil {
		return contracts.Projects{}, fmt.Errorf("malformed projects configuration at %q: %w", path, err)
	}
	projects.ApplyDefaults()
	return projects, projects.Validate()
}

// LoadSettings layers the provided env files in order (absent files are
// skipped, later files win) and lets the process environment override them
// all.
func (this *ConfigLoader) LoadSettings(envFiles ...string) (contracts.Settings, error) {
	values := make(map[string]string)
	for _, file := range envFiles {
		raw, err := this.storage.ReadFile(file)
		if err != nil {
			continue
		}
		parsed, err := godotenv.UnmarshalBytes(raw)
		if err != nil {
			return contracts.Settings{}, fmt.Errorf("malformed settings file at %q: %w", file, err)
		}
		for key, value := range parsed {
			values[key] = value
		}
	}

	settings := contracts.Settings{
		UpstreamURL:  this.lookup(values, upstreamURLKey),
		PrivateToken: this.lookup(values, privateTokenKey),
	}
	return settings, settings.Validate()
}

func (this *ConfigLoader) lookup(values map[string]string, key string) string {
	if value, set := this.env.LookupEnv(key); set {
		return value
	}
	return values[key]
}
