package tabdata

// PermissionOption is one selectable value for a site permission.
type PermissionOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Permission is the grant state of one site permission (camera, mic,
// geolocation, ...) as reported by the host.
type Permission struct {
	Key        string             `json:"key"`
	Title      string             `json:"title"`
	Permission string             `json:"permission"`
	Options    []PermissionOption `json:"options,omitempty"`
}

// PublicKey is the key summary shown in the certificate detail view.
type PublicKey struct {
	Type      string `json:"type,omitempty"`
	BitSize   int    `json:"bitSize,omitempty"`
	CanSign   bool   `json:"canSign,omitempty"`
	CanVerify bool   `json:"canVerify,omitempty"`
}

// CertificateItem is one link in the site's certificate chain.
type CertificateItem struct {
	CommonName string     `json:"commonName"`
	Summary    string     `json:"summary,omitempty"`
	PublicKey  *PublicKey `json:"publicKey,omitempty"`
}

// Tab is the per-page portion of a snapshot.
type Tab struct {
	URL             string              `json:"url"`
	Locale          string              `json:"locale"`
	UpgradedHTTPS   bool                `json:"upgradedHttps"`
	Protections     Protections         `json:"protections"`
	TrackerBlocking TrackerBlockingData `json:"trackerBlockingData"`
	ParentEntity    *Entity             `json:"parentEntity,omitempty"`
	Consent         *ConsentStatus      `json:"cookiePromptManagementStatus,omitempty"`
}

// Snapshot is the immutable, renderable view of all known tab state.
// It exists only once the readiness gate is satisfied; optional overlays
// are present only when the host has reported them.
type Snapshot struct {
	Tab              Tab               `json:"tab"`
	Permissions      []Permission      `json:"permissions,omitempty"`
	Certificate      []CertificateItem `json:"certificate,omitempty"`
	IsPendingUpdates *bool             `json:"isPendingUpdates,omitempty"`
}
