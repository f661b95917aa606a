package http

// ProtectionRequest toggles site protection. Allowlisted follows the
// generic UI model; the dispatcher inverts it into the protection flag.
type ProtectionRequest struct {
	Allowlisted *bool  `json:"allowlisted" binding:"required"`
	Screen      string `json:"screen"`
}

// PermissionRequest updates one site permission.
type PermissionRequest struct {
	Permission string `json:"permission" binding:"required"`
	Value      string `json:"value" binding:"required"`
}

// OpenSettingsRequest deep-links into host settings.
type OpenSettingsRequest struct {
	Target string `json:"target" binding:"required"`
}

// OpenURLRequest opens a URL in a new tab.
type OpenURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// ReportRequest submits a categorized breakage report.
type ReportRequest struct {
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
}

// SizeRequest reports the rendered dashboard height.
type SizeRequest struct {
	Height int `json:"height" binding:"required,gt=0"`
}

// CloseRequest dismisses the dashboard.
type CloseRequest struct {
	Screen string `json:"screen"`
}
