package tabdata

// FeatureContentBlocking is the protection feature gating tracker blocking.
const FeatureContentBlocking = "contentBlocking"

// Protections describes the content-blocking state for the current site.
type Protections struct {
	UnprotectedTemporary bool     `json:"unprotectedTemporary"`
	EnabledFeatures      []string `json:"enabledFeatures"`
	Allowlisted          bool     `json:"allowlisted"`
	Denylisted           bool     `json:"denylisted"`
}

// NewProtections builds a protection record from its raw components.
func NewProtections(unprotectedTemporary bool, enabledFeatures []string, allowlisted, denylisted bool) Protections {
	if enabledFeatures == nil {
		enabledFeatures = []string{}
	}
	return Protections{
		UnprotectedTemporary: unprotectedTemporary,
		EnabledFeatures:      enabledFeatures,
		Allowlisted:          allowlisted,
		Denylisted:           denylisted,
	}
}

// Enabled reports whether tracker blocking is active for the site.
func (p Protections) Enabled() bool {
	if p.UnprotectedTemporary || p.Allowlisted || p.Denylisted {
		return false
	}
	for _, f := range p.EnabledFeatures {
		if f == FeatureContentBlocking {
			return true
		}
	}
	return false
}
