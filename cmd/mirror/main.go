package main

import (
	"log"
	"os"

	"bitbucket.org/smartystreets/mirror/contracts"
	"bitbucket.org/smartystreets/mirror/core"
	"bitbucket.org/smartystreets/mirror/shell"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	config, err := parseConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	loader := core.NewConfigLoader(shell.NewDiskFileSystem(), shell.NewEnvironment())
	projects, err := loader.LoadProjects(config.ProjectsPath)
	if err != nil {
		log.Fatal(err)
	}
	settings, err := loader.LoadSettings(config.EnvPaths...)
	if err != nil {
		log.Fatal(err)
	}

	if config.ProjectName != "" {
		project, err := projects.GetProject(config.ProjectName)
		if err != nil {
			log.Fatal(err)
		}
		projects.Projects = []contracts.ProjectConfig{project}
	}

	os.Exit(NewSyncApp(projects, settings).Run())
}
