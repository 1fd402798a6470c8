// Package autoupdate checks GitHub releases for a newer slipbar build. It
// only detects and reports; installing happens through the regular release
// artifacts, never by the running app overwriting itself.
package autoupdate

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// ReleaseChannel selects which releases count as update candidates.
type ReleaseChannel string

const (
	ChannelStable     ReleaseChannel = "stable"     // stable releases only
	ChannelPrerelease ReleaseChannel = "prerelease" // stable plus beta/rc builds
)

// Release is the subset of the GitHub release object the checker reads.
type Release struct {
	TagName    string    `json:"tag_name"`
	Name       string    `json:"name"`
	Body       string    `json:"body"`
	Published  time.Time `json:"published_at"`
	Prerelease bool      `json:"prerelease"`
	Draft      bool      `json:"draft"`
	HTMLURL    string    `json:"html_url"`
}

// Checker queries the GitHub releases API for one repository.
type Checker struct {
	currentVersion string
	apiURL         string
	channel        ReleaseChannel
	httpClient     *http.Client
}

// NewChecker builds a checker for owner/repo against the given installed
// version string.
func NewChecker(owner, repo, currentVersion string) *Checker {
	return &Checker{
		currentVersion: currentVersion,
		apiURL:         fmt.Sprintf("https://api.github.com/repos/%s/%s", owner, repo),
		channel:        ChannelStable,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// SetChannel switches the release channel.
func (c *Checker) SetChannel(channel ReleaseChannel) { c.channel = channel }

// SetAPIURL overrides the GitHub API base URL (tests point it at a local
// server).
func (c *Checker) SetAPIURL(url string) { c.apiURL = url }

// LatestRelease fetches the newest release matching the channel.
func (c *Checker) LatestRelease() (*Release, error) {
	if c.channel == ChannelStable {
		return c.fetchLatestStable()
	}
	return c.fetchLatestInChannel()
}

func (c *Checker) fetchLatestStable() (*Release, error) {
	resp, err := c.httpClient.Get(c.apiURL + "/releases/latest")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d", resp.StatusCode)
	}
	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release: %w", err)
	}
	return &release, nil
}

func (c *Checker) fetchLatestInChannel() (*Release, error) {
	resp, err := c.httpClient.Get(c.apiURL + "/releases?per_page=30")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch releases: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d", resp.StatusCode)
	}
	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to parse releases: %w", err)
	}
	for i := range releases {
		if c.matchesChannel(&releases[i]) {
			return &releases[i], nil
		}
	}
	return nil, fmt.Errorf("no releases found matching channel %s", c.channel)
}

func (c *Checker) matchesChannel(release *Release) bool {
	if release.Draft {
		return false
	}
	if c.channel == ChannelStable {
		return !release.Prerelease
	}
	return true
}

// IsUpdateAvailable reports whether the latest channel release is newer than
// the installed version. The release is returned so callers can surface the
// tag and notes.
func (c *Checker) IsUpdateAvailable() (bool, *Release, error) {
	release, err := c.LatestRelease()
	if err != nil {
		return false, nil, err
	}
	latest := normalizeVersion(strings.TrimPrefix(release.TagName, "v"))
	current := normalizeVersion(strings.TrimPrefix(c.currentVersion, "v"))
	if isNewer(latest, current) {
		return true, release, nil
	}
	return false, nil, nil
}

// normalizeVersion strips git-describe suffixes ("-dirty", "-2-g5ea24ba")
// while keeping real pre-release tags ("-rc1", "-beta.1", "-dev").
func normalizeVersion(v string) string {
	parts := strings.Split(v, "-")
	out := []string{parts[0]}
	for _, p := range parts[1:] {
		if p == "dirty" || isCommitCount(p) || isCommitHash(p) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "-")
}

func isCommitCount(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isCommitHash(s string) bool {
	if len(s) < 5 || s[0] != 'g' {
		return false
	}
	for _, r := range s[1:] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// isNewer compares dotted numeric versions, ignoring pre-release suffixes on
// individual components.
func isNewer(version1, version2 string) bool {
	parts1 := strings.Split(version1, ".")
	parts2 := strings.Split(version2, ".")

	for i := 0; i < len(parts1) && i < len(parts2); i++ {
		var v1, v2 int
		fmt.Sscanf(parts1[i], "%d", &v1)
		fmt.Sscanf(parts2[i], "%d", &v2)
		if v1 > v2 {
			return true
		}
		if v1 < v2 {
			return false
		}
	}
	return len(parts1) > len(parts2)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Printf("[autoupdate] failed to close response body: %v", err)
	}
}
