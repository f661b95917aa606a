package intent

// Kind names one outbound intent.
type Kind string

const (
	KindSetProtection              Kind = "setProtection"
	KindSetPermission              Kind = "setPermission"
	KindOpenSettings               Kind = "openSettings"
	KindOpenURLInNewTab            Kind = "openUrlInNewTab"
	KindSubmitBrokenSiteReport     Kind = "submitBrokenSiteReport"
	KindGetToggleReportOptions     Kind = "getToggleReportOptions"
	KindSendToggleBreakageReport   Kind = "sendToggleBreakageReport"
	KindRejectToggleBreakageReport Kind = "rejectToggleBreakageReport"
	KindSeeWhatIsSent              Kind = "seeWhatIsSent"
	KindSetSize                    Kind = "setSize"
	KindClose                      Kind = "close"
)

// EventOrigin records which dashboard screen triggered an intent.
type EventOrigin struct {
	Screen string `json:"screen"`
}

// Intent is one normalized outbound action. Payload is the kind's payload
// struct; kinds with an empty payload carry nil.
type Intent struct {
	Kind    Kind `json:"kind"`
	Payload any  `json:"payload,omitempty"`
}

// SetProtectionPayload toggles content blocking for the current site.
type SetProtectionPayload struct {
	IsProtected bool        `json:"isProtected"`
	EventOrigin EventOrigin `json:"eventOrigin"`
}

// SetPermissionPayload updates one site permission.
type SetPermissionPayload struct {
	Permission string `json:"permission"`
	Value      string `json:"value"`
}

// OpenSettingsPayload deep-links into a host settings screen.
type OpenSettingsPayload struct {
	Target string `json:"target"`
}

// OpenURLPayload opens a URL in a new tab.
type OpenURLPayload struct {
	URL string `json:"url"`
}

// BrokenSiteReportPayload is a categorized breakage report.
type BrokenSiteReportPayload struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SetSizePayload reports the rendered dashboard height to the host.
type SetSizePayload struct {
	Height int `json:"height"`
}

// ClosePayload dismisses the dashboard.
type ClosePayload struct {
	EventOrigin EventOrigin `json:"eventOrigin"`
}

// ToggleReportParam is one disclosed field of a toggle breakage report.
type ToggleReportParam struct {
	ID         string            `json:"id"`
	Additional map[string]string `json:"additional,omitempty"`
}

// ToggleReportOptions is the host's reply to GetToggleReportOptions: the
// list of values that would be sent with a toggle breakage report.
type ToggleReportOptions struct {
	Data []ToggleReportParam `json:"data"`
}
