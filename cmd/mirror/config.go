package main

import (
	"flag"
	"fmt"
	"os"
)

type Config struct {
	ProjectsPath string
	EnvPaths     multiFlag
	ProjectName  string
}

func parseConfig(args []string) (config Config, err error) {
	flags := flag.NewFlagSet("mirror", flag.ContinueOnError)
	flags.StringVar(&config.ProjectsPath,
		"config",
		"/etc/mirror/projects.toml",
		"Path to the projects configuration file.",
	)
	flags.Var(&config.EnvPaths,
		"env",
		"Path to an env file with upstream settings (may be repeated; later files win, process env wins over all).",
	)
	flags.StringVar(&config.ProjectName,
		"project",
		"",
		"Synchronize only the named project instead of all configured projects.",
	)

	flags.Usage = func() {
		output := flags.Output()
		_, _ = fmt.Fprintf(output, "Usage of %s:\n", os.Args[0])
		flags.PrintDefaults()
		_, _ = fmt.Fprintln(output)
		_, _ = fmt.Fprintln(output, "  Maintains a local mirror of promoted release artifacts for each configured project.")
		_, _ = fmt.Fprintln(output, "  Settings read from env files: UPSTREAM_URL, PRIVATE_TOKEN.")
		_, _ = fmt.Fprintln(output)
	}

	err = flags.Parse(args)
	if err != nil {
		return Config{}, err
	}
	if len(config.EnvPaths) == 0 {
		config.EnvPaths = multiFlag{"/etc/mirror/settings.env"}
	}
	return config, nil
}

type multiFlag []string

func (this *multiFlag) String() string {
	return fmt.Sprint([]string(*this))
}

func (this *multiFlag) Set(value string) error {
	*this = append(*this, value)
	return nil
}
