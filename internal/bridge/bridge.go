package bridge

import (
	"github.com/glasspane/dashboard/internal/domain/intent"
	"github.com/glasspane/dashboard/internal/platform"
)

// Inbound message types, one per recognized field kind.
const (
	MsgRequestData        = "requestData"
	MsgProtectionsStatus  = "protectionsStatus"
	MsgLocaleSettings     = "localeSettings"
	MsgConsentManaged     = "consentManaged"
	MsgAllowedPermissions = "allowedPermissions"
	MsgUpgradedHTTPS      = "upgradedHttps"
	MsgCertificateData    = "certificateData"
	MsgIsPendingUpdates   = "isPendingUpdates"
	MsgParentEntity       = "parentEntity"
)

// Notification types pushed to the render layer.
const (
	MsgUpdateTabData = "updateTabData"
	MsgFirstPaint    = "firstPaint"
)

// Adapter is one host platform's transport binding: it carries normalized
// intents out and identifies the platform for capability lookup.
type Adapter interface {
	intent.Outbound
	Platform() platform.Platform
}
