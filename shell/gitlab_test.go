package shell

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/assertions/should"
	"github.com/smartystreets/gunit"

	"bitbucket.org/smartystreets/mirror/contracts"
)

func TestGitLabUpstreamFixture(t *testing.T) {
	gunit.Run(new(GitLabUpstreamFixture), t)
}

type GitLabUpstreamFixture struct {
	*gunit.Fixture

	server    *httptest.Server
	upstream  *GitLabUpstream
	directory string

	releasesJSON     string
	promotionContent []byte
	buildContent     []byte
	buildStatus      int

	requestedURIs  []string
	requestedToken string
}

func (this *GitLabUpstreamFixture) Setup() {
	this.buildStatus = http.StatusOK
	this.buildContent = []byte("build-archive")
	this.promotionContent = []byte("promotion-archive")
	this.server = httptest.NewServer(http.HandlerFunc(this.handle))
	this.upstream = NewGitLabUpstream(this.server.Client(), this.server.URL, "secret", "archlinux/archiso")

	directory, err := os.MkdirTemp("", "mirror-gitlab-")
	this.So(err, should.BeNil)
	this.directory = directory

	this.releasesJSON = fmt.Sprintf(`[
		{"tag_name": "1.0.2", "assets": {"links": [{"name": "Promotion artifact", "url": "%s/promotion"}]}},
		{"tag_name": "1.0.1", "assets": {"links": []}},
		{"tag_name": "1.0.0", "assets": {"links": [{"name": "Promotion artifact", "url": "%s/promotion"}]}},
		{"tag_name": "0.9.0", "assets": {"links": [{"name": "Promotion artifact", "url": "%s/promotion"}]}}
	]`, this.server.URL, this.server.URL, this.server.URL)
}

func (this *GitLabUpstreamFixture) Teardown() {
	this.server.Close()
	_ = os.RemoveAll(this.directory)
}

func (this *GitLabUpstreamFixture) handle(response http.ResponseWriter, request *http.Request) {
	this.requestedURIs = append(this.requestedURIs, request.URL.RequestURI())
	this.requestedToken = request.Header.Get("PRIVATE-TOKEN")

	switch {
	case strings.HasSuffix(request.URL.Path, "/releases"):
		_, _ = response.Write([]byte(this.releasesJSON))
	case strings.Contains(request.URL.Path, "/jobs/artifacts/"):
		response.WriteHeader(this.buildStatus)
		_, _ = response.Write(this.buildContent)
	case request.URL.Path == "/promotion":
		_, _ = response.Write(this.promotionContent)
	default:
		response.WriteHeader(http.StatusNotFound)
	}
}

func (this *GitLabUpstreamFixture) TestOnlyReleasesWithPromotionLinksAreListedNewestFirst() {
	tags, err := this.upstream.ListPromotedReleases(2)

	this.So(err, should.BeNil)
	this.So(tags, should.Resemble, []string{"1.0.2", "1.0.0"})
}

func (this *GitLabUpstreamFixture) TestLargeBacklogListsEveryPromotedRelease() {
	tags, err := this.upstream.ListPromotedReleases(10)

	this.So(err, should.BeNil)
	this.So(tags, should.Resemble, []string{"1.0.2", "1.0.0", "0.9.0"})
}

func (this *GitLabUpstreamFixture) TestPrivateTokenAccompaniesEveryRequest() {
	_, err := this.upstream.ListPromotedReleases(1)

	this.So(err, should.BeNil)
	this.So(this.requestedToken, should.Equal, "secret")
}

func (this *GitLabUpstreamFixture) TestProjectPathIsEscapedInTheReleaseListing() {
	_, err := this.upstream.ListPromotedReleases(1)

	this.So(err, should.BeNil)
	this.So(this.requestedURIs[0], should.ContainSubstring, "/api/v4/projects/archlinux%2Farchiso/releases")
}

func (this *GitLabUpstreamFixture) TestPromotionArtifactDownloadedIntoTargetDirectory() {
	path, err := this.upstream.DownloadPromotionArtifact("1.0.0", this.directory)

	this.So(err, should.BeNil)
	this.So(path, should.Equal, filepath.Join(this.directory, "promotion.zip"))
	content, readErr := os.ReadFile(path)
	this.So(readErr, should.BeNil)
	this.So(content, should.Resemble, this.promotionContent)
}

func (this *GitLabUpstreamFixture) TestUnknownTagHasNoPromotionArtifact() {
	_, err := this.upstream.DownloadPromotionArtifact("9.9.9", this.directory)

	this.So(errors.Is(err, contracts.ErrArtifactNotFound), should.BeTrue)
}

func (this *GitLabUpstreamFixture) TestReleaseWithoutPromotionLinkHasNoPromotionArtifact() {
	_, err := this.upstream.DownloadPromotionArtifact("1.0.1", this.directory)

	this.So(errors.Is(err, contracts.ErrArtifactNotFound), should.BeTrue)
}

func (this *GitLabUpstreamFixture) TestBuildArtifactNamedAfterShortProjectNameAndTag() {
	path, err := this.upstream.DownloadBuildArtifact("1.0.0", this.directory, "build")

	this.So(err, should.BeNil)
	this.So(path, should.Equal, filepath.Join(this.directory, "archiso-1.0.0.zip"))
	this.So(this.requestedURIs[0], should.ContainSubstring, "/jobs/artifacts/1.0.0/download?job=build")
	content, readErr := os.ReadFile(path)
	this.So(readErr, should.BeNil)
	this.So(content, should.Resemble, this.buildContent)
}

func (this *GitLabUpstreamFixture) TestAbsentBuildArtifactReportedAsNotFound() {
	this.buildStatus = http.StatusNotFound

	_, err := this.upstream.DownloadBuildArtifact("1.0.0", this.directory, "build")

	this.So(errors.Is(err, contracts.ErrArtifactNotFound), should.BeTrue)
}

func (this *GitLabUpstreamFixture) TestServerErrorIsNotMistakenForAMissingArtifact() {
	this.buildStatus = http.StatusInternalServerError

	_, err := this.upstream.DownloadBuildArtifact("1.0.0", this.directory, "build")

	this.So(err, should.NotBeNil)
	this.So(errors.Is(err, contracts.ErrArtifactNotFound), should.BeFalse)
}
