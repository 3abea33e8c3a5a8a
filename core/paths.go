package core

import "fmt"

// The mirror's on-disk contract, two levels deep per release type:
//
//	<sync_dir>/<type>/latest
//	<sync_dir>/<type>/<type>-<version>/
//	<sync_dir>/<type>/<type>-<version>.json
//	<sync_dir>/<type>/<type>-<version>.torrent
//
// Version files live in the version directory; the sidecar and torrent sit
// flat in the release-type directory.

const LatestName = "latest"

func ComposeVersionDirName(name, version string) string {
	return fmt.Sprintf("%s-%s", name, version)
}

func ComposeSidecarName(name, version string) string {
	return ComposeVersionDirName(name, version) + ".json"
}

func ComposeTorrentName(name, version string) string {
	return ComposeVersionDirName(name, version) + ".torrent"
}
