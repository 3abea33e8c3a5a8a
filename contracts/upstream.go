package contracts

import "errors"

// Upstream is the narrow surface of the remote project host the engine
// depends on. Implementations wrap whatever client the host requires; the
// engine never sees more than these three operations.
type Upstream interface {
	ReleaseLister
	ArtifactDownloader
}

type ReleaseLister interface {
	// ListPromotedReleases returns the tags of the most recent releases
	// carrying a promotion artifact, newest first, at most maxReleases.
	ListPromotedReleases(maxReleases int) ([]string, error)
}

type ArtifactDownloader interface {
	// DownloadPromotionArtifact downloads the promotion bundle for the
	// given tag into directory and returns the path of the archive file.
	DownloadPromotionArtifact(tag, directory string) (string, error)

	// DownloadBuildArtifact downloads the build bundle produced by the
	// named job for the given tag into directory and returns the path of
	// the archive file.
	DownloadBuildArtifact(tag, directory, jobName string) (string, error)
}

// ErrArtifactNotFound reports a promotion or build bundle that is absent
// upstream.
var ErrArtifactNotFound = errors.New("artifact not found upstream")
