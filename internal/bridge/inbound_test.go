package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasspane/dashboard/internal/domain/aggregator"
	"github.com/glasspane/dashboard/internal/domain/tabdata"
)

func newInbound() (*Inbound, *aggregator.Aggregator) {
	agg := aggregator.New()
	return NewInbound(agg, nil), agg
}

func validRequestData() RequestDataMessage {
	return RequestDataMessage{
		TabURL: "https://example.com/page",
		RequestData: tabdata.RequestPayload{
			Requests: []tabdata.DetectedRequest{
				{URL: "https://tracker.example/collect", State: tabdata.StateBlocked},
			},
		},
	}
}

func TestInboundAppliesValidFields(t *testing.T) {
	in, agg := newInbound()

	require.NoError(t, in.ProtectionsStatus(ProtectionsMessage{
		EnabledFeatures: []string{tabdata.FeatureContentBlocking},
	}))
	require.NoError(t, in.RequestData(validRequestData()))
	require.NoError(t, in.UpgradedHTTPS(true))
	require.NoError(t, in.LocaleSettings(LocaleMessage{Locale: "en"}))

	require.True(t, agg.Ready())
	snap := agg.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "example.com", snap.Tab.TrackerBlocking.Domain)
	assert.True(t, snap.Tab.Protections.Enabled())
}

func TestInboundEmptyFeatureListIsValid(t *testing.T) {
	in, agg := newInbound()

	require.NoError(t, in.ProtectionsStatus(ProtectionsMessage{EnabledFeatures: []string{}}))
	require.NoError(t, in.RequestData(validRequestData()))

	snap := agg.Snapshot()
	assert.Nil(t, snap, "gate still open without locale and upgrade state")

	require.NoError(t, in.UpgradedHTTPS(false))
	require.NoError(t, in.LocaleSettings(LocaleMessage{Locale: "en"}))
	snap = agg.Snapshot()
	require.NotNil(t, snap)
	assert.False(t, snap.Tab.Protections.Enabled())
}

func TestInboundDropsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		deliver func(in *Inbound) error
	}{
		{
			name: "request data with bad tab url",
			deliver: func(in *Inbound) error {
				msg := validRequestData()
				msg.TabURL = "not a url"
				return in.RequestData(msg)
			},
		},
		{
			name: "request with empty url",
			deliver: func(in *Inbound) error {
				msg := validRequestData()
				msg.RequestData.Requests[0].URL = ""
				return in.RequestData(msg)
			},
		},
		{
			name: "request with unknown state",
			deliver: func(in *Inbound) error {
				msg := validRequestData()
				msg.RequestData.Requests[0].State = "teleported"
				return in.RequestData(msg)
			},
		},
		{
			name: "empty locale",
			deliver: func(in *Inbound) error {
				return in.LocaleSettings(LocaleMessage{})
			},
		},
		{
			name: "malformed locale tag",
			deliver: func(in *Inbound) error {
				return in.LocaleSettings(LocaleMessage{Locale: "!!"})
			},
		},
		{
			name: "certificate item without common name",
			deliver: func(in *Inbound) error {
				return in.CertificateData(CertificateMessage{
					Certificate: []tabdata.CertificateItem{{}},
				})
			},
		},
		{
			name: "parent entity without display name",
			deliver: func(in *Inbound) error {
				return in.ParentEntity(ParentEntityMessage{Prevalence: 10})
			},
		},
		{
			name: "parent entity with negative prevalence",
			deliver: func(in *Inbound) error {
				return in.ParentEntity(ParentEntityMessage{DisplayName: "X", Prevalence: -1})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, agg := newInbound()
			require.NoError(t, in.ProtectionsStatus(ProtectionsMessage{}))

			// Invalid deliveries are swallowed: nil error, state untouched.
			assert.NoError(t, tt.deliver(in))
			assert.False(t, agg.Ready())
			assert.Nil(t, agg.Snapshot())
		})
	}
}

func TestInboundOrderingViolationPropagates(t *testing.T) {
	in, agg := newInbound()

	err := in.RequestData(validRequestData())
	require.ErrorIs(t, err, aggregator.ErrProtectionsNotSet)
	assert.False(t, agg.Ready())
}

func TestInboundConsentMerges(t *testing.T) {
	in, agg := newInbound()
	yes := true

	require.NoError(t, in.ProtectionsStatus(ProtectionsMessage{}))
	require.NoError(t, in.RequestData(validRequestData()))
	require.NoError(t, in.UpgradedHTTPS(false))
	require.NoError(t, in.LocaleSettings(LocaleMessage{Locale: "de-DE"}))

	require.NoError(t, in.ConsentManaged(tabdata.ConsentUpdate{ConsentManaged: &yes}))
	require.NoError(t, in.ConsentManaged(tabdata.ConsentUpdate{Cosmetic: &yes}))

	snap := agg.Snapshot()
	require.NotNil(t, snap)
	require.NotNil(t, snap.Tab.Consent)
	assert.True(t, snap.Tab.Consent.ConsentManaged)
	assert.True(t, snap.Tab.Consent.Cosmetic)
}

func TestInboundPermissionsPassThrough(t *testing.T) {
	in, agg := newInbound()

	require.NoError(t, in.ProtectionsStatus(ProtectionsMessage{}))
	require.NoError(t, in.RequestData(validRequestData()))
	require.NoError(t, in.UpgradedHTTPS(false))
	require.NoError(t, in.LocaleSettings(LocaleMessage{Locale: "en"}))

	require.NoError(t, in.AllowedPermissions([]tabdata.Permission{
		{Key: "camera", Title: "Camera", Permission: "ask"},
	}))

	snap := agg.Snapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Permissions, 1)
	assert.Equal(t, "camera", snap.Permissions[0].Key)
}
