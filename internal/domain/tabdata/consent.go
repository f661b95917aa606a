package tabdata

// ConsentStatus accumulates cookie-prompt management state. The host
// reports it incrementally across multiple messages, so updates merge
// into the existing record instead of replacing it.
type ConsentStatus struct {
	ConsentManaged bool `json:"consentManaged"`
	OptoutFailed   bool `json:"optoutFailed"`
	SelftestFailed bool `json:"selftestFailed"`
	Configurable   bool `json:"configurable"`
	Cosmetic       bool `json:"cosmetic"`
}

// ConsentUpdate is a partial consent-status delivery. Nil fields are
// absent from the message and leave the accumulator untouched.
type ConsentUpdate struct {
	ConsentManaged *bool `json:"consentManaged,omitempty"`
	OptoutFailed   *bool `json:"optoutFailed,omitempty"`
	SelftestFailed *bool `json:"selftestFailed,omitempty"`
	Configurable   *bool `json:"configurable,omitempty"`
	Cosmetic       *bool `json:"cosmetic,omitempty"`
}

// Merge applies the provided fields of u onto s.
func (s *ConsentStatus) Merge(u ConsentUpdate) {
	if u.ConsentManaged != nil {
		s.ConsentManaged = *u.ConsentManaged
	}
	if u.OptoutFailed != nil {
		s.OptoutFailed = *u.OptoutFailed
	}
	if u.SelftestFailed != nil {
		s.SelftestFailed = *u.SelftestFailed
	}
	if u.Configurable != nil {
		s.Configurable = *u.Configurable
	}
	if u.Cosmetic != nil {
		s.Cosmetic = *u.Cosmetic
	}
}
