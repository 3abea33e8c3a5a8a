package core

import (
	"encoding/json"
	"fmt"

	"bitbucket.org/smartystreets/mirror/contracts"
)

func LoadRelease(fileSystem contracts.FileReader, path string) (release contracts.Release, err error) {
	raw, err := fileSystem.ReadFile(path)
	if err != nil {
		return contracts.Release{}, fmt.Errorf("could not read release sidecar at %q: %w", path, err)
	}
	err = json.Unmarshal(raw, &release)
	if err != nil {
		return contracts.Release{}, fmt.Errorf("malformed release sidecar at %q: %w", path, err)
	}
	return release, nil
}

// WriteRelease serializes a release descriptor as two-space-indented,
// sorted-key, newline-terminated JSON (the sidecar wire format).
func WriteRelease(fileSystem contracts.FileWriter, path string, release contracts.Release) error {
	raw, err := json.MarshalIndent(release, "", "  ")
	if err != nil {
		return err
	}
	return fileSystem.WriteFile(path, append(raw, '\n'))
}
