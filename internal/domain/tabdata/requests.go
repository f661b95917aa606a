package tabdata

import (
	"net/url"
	"strings"
)

// RequestState classifies how a detected request was handled.
type RequestState string

const (
	StateBlocked                RequestState = "blocked"
	StateAllowedFirstParty      RequestState = "allowedFirstParty"
	StateAllowedRuleException   RequestState = "allowedRuleException"
	StateAllowedAdClick         RequestState = "allowedAdClickAttribution"
	StateAllowedOtherThirdParty RequestState = "allowedOtherThirdParty"
	StateAllowedUnprotected     RequestState = "allowedProtectionsDisabled"
)

// Blocked reports whether the request was prevented from loading.
func (s RequestState) Blocked() bool {
	return s == StateBlocked
}

// Entity describes the owning entity of a tracker domain.
type Entity struct {
	DisplayName string  `json:"displayName"`
	Prevalence  float64 `json:"prevalence"`
}

// DetectedRequest is a single third-party request observed by the host.
type DetectedRequest struct {
	URL       string       `json:"url"`
	ETLDPlus1 string       `json:"eTLDplus1,omitempty"`
	PageURL   string       `json:"pageUrl,omitempty"`
	State     RequestState `json:"state"`
	Category  string       `json:"category,omitempty"`
	Entity    *Entity      `json:"entity,omitempty"`
}

// RequestPayload is the raw request-data fragment delivered by the host.
// It carries no protection context; that is layered on during derivation.
type RequestPayload struct {
	Requests            []DetectedRequest `json:"requests"`
	InstalledSurrogates []string          `json:"installedSurrogates,omitempty"`
}

// RequestStats summarizes detected requests by outcome.
type RequestStats struct {
	Total   int `json:"total"`
	Blocked int `json:"blocked"`
	Allowed int `json:"allowed"`
}

// TrackerBlockingData is the derived request classification for the page.
// It records the protection state and HTTPS-upgrade value that were current
// at derivation time, so re-deliveries of the same raw payload can differ.
type TrackerBlockingData struct {
	Domain              string            `json:"domain"`
	URL                 string            `json:"url"`
	UpgradedHTTPS       bool              `json:"upgradedHttps"`
	Protections         Protections       `json:"protections"`
	Requests            []DetectedRequest `json:"requests"`
	InstalledSurrogates []string          `json:"installedSurrogates,omitempty"`
	Stats               RequestStats      `json:"stats"`
}

// NewTrackerBlockingData derives tracker-blocking data from a raw request
// payload and the latest known protection context.
func NewTrackerBlockingData(tabURL string, upgradedHTTPS bool, protections Protections, raw RequestPayload) TrackerBlockingData {
	requests := raw.Requests
	if requests == nil {
		requests = []DetectedRequest{}
	}

	stats := RequestStats{Total: len(requests)}
	for _, r := range requests {
		if r.State.Blocked() {
			stats.Blocked++
		} else {
			stats.Allowed++
		}
	}

	return TrackerBlockingData{
		Domain:              domainOf(tabURL),
		URL:                 tabURL,
		UpgradedHTTPS:       upgradedHTTPS,
		Protections:         protections,
		Requests:            requests,
		InstalledSurrogates: raw.InstalledSurrogates,
		Stats:               stats,
	}
}

// domainOf extracts the registrable host from a page URL. Invalid URLs
// yield an empty domain rather than an error; the payload has already
// passed bridge validation and a missing host is not a merge failure.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
