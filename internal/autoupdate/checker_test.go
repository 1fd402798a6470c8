package autoupdate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0.3.0", "0.3.0"},
		{"0.3.0-dirty", "0.3.0"},
		{"0.3.0-2-g5ea24ba", "0.3.0"},
		{"0.3.0-2-g5ea24ba-dirty", "0.3.0"},
		{"0.2.0-rc1", "0.2.0-rc1"},
		{"1.0.0-beta.1", "1.0.0-beta.1"},
		{"0.1.0-dev", "0.1.0-dev"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeVersion(tt.input); got != tt.expected {
				t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		version1 string
		version2 string
		expected bool
	}{
		{"0.3.0", "0.2.0", true},
		{"0.2.0", "0.3.0", false},
		{"1.0.0", "0.9.9", true},
		{"0.3.0", "0.3.0", false},
		{"0.3.1", "0.3.0", true},
		{"0.3.0-rc1", "0.2.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.version1+" vs "+tt.version2, func(t *testing.T) {
			if got := isNewer(tt.version1, tt.version2); got != tt.expected {
				t.Errorf("isNewer(%q, %q) = %v, want %v", tt.version1, tt.version2, got, tt.expected)
			}
		})
	}
}

// fakeGitHub serves canned release documents on the two endpoints the
// checker hits.
func fakeGitHub(t *testing.T, latest Release, all []Release) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(latest)
	})
	mux.HandleFunc("/releases", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(all)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestIsUpdateAvailable_Stable(t *testing.T) {
	ts := fakeGitHub(t, Release{TagName: "v0.4.0"}, nil)

	checker := NewChecker("slipbar", "slipbar", "0.3.0")
	checker.SetAPIURL(ts.URL)

	available, release, err := checker.IsUpdateAvailable()
	if err != nil {
		t.Fatalf("IsUpdateAvailable: %v", err)
	}
	if !available || release == nil || release.TagName != "v0.4.0" {
		t.Errorf("got available=%v release=%+v, want v0.4.0 available", available, release)
	}
}

func TestIsUpdateAvailable_AlreadyCurrent(t *testing.T) {
	ts := fakeGitHub(t, Release{TagName: "v0.3.0"}, nil)

	checker := NewChecker("slipbar", "slipbar", "v0.3.0-2-gabcde12-dirty")
	checker.SetAPIURL(ts.URL)

	available, release, err := checker.IsUpdateAvailable()
	if err != nil {
		t.Fatalf("IsUpdateAvailable: %v", err)
	}
	if available || release != nil {
		t.Errorf("dev build of the current version must not see an update, got %+v", release)
	}
}

func TestLatestRelease_PrereleaseChannel(t *testing.T) {
	all := []Release{
		{TagName: "v0.5.0-rc1", Prerelease: true},
		{TagName: "v0.4.0"},
	}
	ts := fakeGitHub(t, Release{TagName: "v0.4.0"}, all)

	checker := NewChecker("slipbar", "slipbar", "0.4.0")
	checker.SetAPIURL(ts.URL)
	checker.SetChannel(ChannelPrerelease)

	release, err := checker.LatestRelease()
	if err != nil {
		t.Fatalf("LatestRelease: %v", err)
	}
	if release.TagName != "v0.5.0-rc1" {
		t.Errorf("prerelease channel got %q, want v0.5.0-rc1", release.TagName)
	}
}

func TestLatestRelease_SkipsDrafts(t *testing.T) {
	all := []Release{
		{TagName: "v0.6.0", Draft: true},
		{TagName: "v0.5.0"},
	}
	ts := fakeGitHub(t, Release{}, all)

	checker := NewChecker("slipbar", "slipbar", "0.4.0")
	checker.SetAPIURL(ts.URL)
	checker.SetChannel(ChannelPrerelease)

	release, err := checker.LatestRelease()
	if err != nil {
		t.Fatalf("LatestRelease: %v", err)
	}
	if release.TagName != "v0.5.0" {
		t.Errorf("draft must be skipped, got %q", release.TagName)
	}
}

func TestLatestRelease_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden) // rate limited
	}))
	t.Cleanup(ts.Close)

	checker := NewChecker("slipbar", "slipbar", "0.4.0")
	checker.SetAPIURL(ts.URL)
	if _, err := checker.LatestRelease(); err == nil {
		t.Error("API error must surface to the caller")
	}
}
