package shell

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"bitbucket.org/smartystreets/mirror/contracts"
)

const promotionLinkName = "Promotion artifact"

// GitLabUpstream implements the narrow upstream surface against the GitLab
// REST API. Promoted releases are those carrying a release link named
// "Promotion artifact".
type GitLabUpstream struct {
	client  *http.Client
	baseURL string
	token   string
	project string
}

func NewGitLabUpstream(client *http.Client, baseURL, token, project string) *GitLabUpstream {
	return &GitLabUpstream{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		project: project,
	}
}

type gitlabRelease struct {
	TagName string `json:"tag_name"`
	Assets  struct {
		Links []gitlabReleaseLink `json:"links"`
	} `json:"assets"`
}

type gitlabReleaseLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListPromotedReleases returns the tags of the newest promoted releases,
// at most maxReleases. The GitLab API lists releases newest first; that
// order is preserved.
func (this *GitLabUpstream) ListPromotedReleases(maxReleases int) (tags []string, err error) {
	releases, err := this.listReleases()
	if err != nil {
		return nil, err
	}
	for _, release := range releases {
		if len(tags) >= maxReleases {
			break
		}
		if release.promotionLink() != "" {
			tags = append(tags, release.TagName)
		}
	}
	return tags, nil
}

// DownloadPromotionArtifact downloads the promotion bundle attached to the
// release tagged tag into directory and returns the archive's path.
func (this *GitLabUpstream) DownloadPromotionArtifact(tag, directory string) (string, error) {
	releases, err := this.listReleases()
	if err != nil {
		return "", err
	}
	for _, release := range releases {
		if release.TagName != tag {
			continue
		}
		link := release.promotionLink()
		if link == "" {
			break
		}
		return this.downloadFile(link, filepath.Join(directory, "promotion.zip"))
	}
	return "", fmt.Errorf("%w: no promotion artifact for release %q", contracts.ErrArtifactNotFound, tag)
}

// DownloadBuildArtifact downloads the artifacts archive produced by
// jobName for the release tagged tag into directory and returns the
// archive's path.
func (this *GitLabUpstream) DownloadBuildArtifact(tag, directory, jobName string) (string, error) {
	address := fmt.Sprintf("%s/api/v4/projects/%s/jobs/artifacts/%s/download?job=%s",
		this.baseURL, url.PathEscape(this.project), url.PathEscape(tag), url.QueryEscape(jobName))
	filename := fmt.Sprintf("%s-%s.zip", this.shortProjectName(), tag)
	return this.downloadFile(address, filepath.Join(directory, filename))
}

func (this *GitLabUpstream) listReleases() (releases []gitlabRelease, err error) {
	address := fmt.Sprintf("%s/api/v4/projects/%s/releases", this.baseURL, url.PathEscape(this.project))
	body, err := this.get(address)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	err = json.NewDecoder(body).Decode(&releases)
	if err != nil {
		return nil, fmt.Errorf("malformed release listing for project %q: %w", this.project, err)
	}
	return releases, nil
}

func (this *GitLabUpstream) downloadFile(address, target string) (string, error) {
	body, err := this.get(address)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	file, err := os.Create(target)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(file, body)
	closeErr := file.Close()
	if err != nil {
		return "", err
	}
	return target, closeErr
}

func (this *GitLabUpstream) get(address string) (io.ReadCloser, error) {
	request, err := http.NewRequest(http.MethodGet, address, nil)
	if err != nil {
		return nil, err
	}
	if this.token != "" {
		request.Header.Set("PRIVATE-TOKEN", this.token)
	}
	response, err := this.client.Do(request)
	if err != nil {
		return nil, err
	}
	if response.StatusCode == http.StatusNotFound {
		_ = response.Body.Close()
		return nil, fmt.Errorf("%w: GET %s", contracts.ErrArtifactNotFound, address)
	}
	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		return nil, fmt.Errorf("unexpected status %q from GET %s", response.Status, address)
	}
	return response.Body, nil
}

func (this *GitLabUpstream) shortProjectName() string {
	if index := strings.LastIndex(this.project, "/"); index >= 0 {
		return this.project[index+1:]
	}
	return this.project
}

func (this gitlabRelease) promotionLink() string {
	for _, link := range this.Assets.Links {
		if link.Name == promotionLinkName {
			return link.URL
		}
	}
	return ""
}
