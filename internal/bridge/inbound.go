package bridge

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/glasspane/dashboard/internal/domain/aggregator"
	"github.com/glasspane/dashboard/internal/domain/tabdata"
	"github.com/glasspane/dashboard/internal/infrastructure/logging"
	"github.com/glasspane/dashboard/internal/infrastructure/monitoring"
)

// RequestDataMessage delivers the raw request classification for a page.
type RequestDataMessage struct {
	TabURL      string                 `json:"tabUrl" validate:"required,url"`
	RequestData tabdata.RequestPayload `json:"requestData"`
}

// ProtectionsMessage delivers the content-blocking status. An empty
// feature list is a valid delivery.
type ProtectionsMessage struct {
	UnprotectedTemporary bool     `json:"unprotectedTemporary"`
	EnabledFeatures      []string `json:"enabledFeatures"`
	Allowlisted          bool     `json:"allowlisted"`
	Denylisted           bool     `json:"denylisted"`
}

// LocaleMessage delivers the active UI locale.
type LocaleMessage struct {
	Locale string `json:"locale" validate:"required,bcp47_language_tag"`
}

// CertificateMessage delivers certificate-chain view data.
type CertificateMessage struct {
	Certificate []tabdata.CertificateItem `json:"certificate"`
}

// ParentEntityMessage delivers owning-entity metadata.
type ParentEntityMessage struct {
	DisplayName string  `json:"displayName" validate:"required"`
	Prevalence  float64 `json:"prevalence" validate:"gte=0"`
}

var knownStates = map[tabdata.RequestState]bool{
	tabdata.StateBlocked:                true,
	tabdata.StateAllowedFirstParty:      true,
	tabdata.StateAllowedRuleException:   true,
	tabdata.StateAllowedAdClick:         true,
	tabdata.StateAllowedOtherThirdParty: true,
	tabdata.StateAllowedUnprotected:     true,
}

// Inbound is the validated entry point for host field updates. One
// instance exists per tab session, bound to its aggregator.
type Inbound struct {
	agg      *aggregator.Aggregator
	validate *validator.Validate
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewInbound creates the inbound path for one session.
func NewInbound(agg *aggregator.Aggregator, logger *logging.Logger) *Inbound {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Inbound{
		agg:      agg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// WithMetrics attaches a metrics collector.
func (in *Inbound) WithMetrics(m *monitoring.Metrics) *Inbound {
	in.metrics = m
	return in
}

// RequestData validates and applies a request-data delivery. Validation
// failures are dropped silently toward the host; the ordering
// precondition (protections first) propagates as a loud error.
func (in *Inbound) RequestData(msg RequestDataMessage) error {
	if err := in.validate.Struct(msg); err != nil {
		return in.reject(MsgRequestData, err)
	}
	for _, r := range msg.RequestData.Requests {
		if r.URL == "" {
			return in.reject(MsgRequestData, fmt.Errorf("request with empty url"))
		}
		if !knownStates[r.State] {
			return in.reject(MsgRequestData, fmt.Errorf("unknown request state %q", r.State))
		}
	}

	if err := in.agg.SetRequestData(msg.TabURL, msg.RequestData); err != nil {
		// Host delivered request data before protections. Contract bug,
		// not a malformed payload; surface it.
		return err
	}
	in.applied(MsgRequestData)
	return nil
}

// ProtectionsStatus validates and applies a protection-status delivery.
func (in *Inbound) ProtectionsStatus(msg ProtectionsMessage) error {
	if err := in.validate.Struct(msg); err != nil {
		return in.reject(MsgProtectionsStatus, err)
	}
	in.agg.SetProtections(tabdata.NewProtections(
		msg.UnprotectedTemporary, msg.EnabledFeatures, msg.Allowlisted, msg.Denylisted))
	in.applied(MsgProtectionsStatus)
	return nil
}

// LocaleSettings validates and applies a locale delivery.
func (in *Inbound) LocaleSettings(msg LocaleMessage) error {
	if err := in.validate.Struct(msg); err != nil {
		return in.reject(MsgLocaleSettings, err)
	}
	in.agg.SetLocale(msg.Locale)
	in.applied(MsgLocaleSettings)
	return nil
}

// UpgradedHTTPS applies the HTTPS-upgrade flag. Booleans have no schema
// to fail.
func (in *Inbound) UpgradedHTTPS(upgraded bool) error {
	in.agg.SetUpgradedHTTPS(upgraded)
	in.applied(MsgUpgradedHTTPS)
	return nil
}

// ConsentManaged merges a partial consent-status delivery.
func (in *Inbound) ConsentManaged(update tabdata.ConsentUpdate) error {
	in.agg.MergeConsent(update)
	in.applied(MsgConsentManaged)
	return nil
}

// AllowedPermissions applies a permissions delivery. The host owns this
// shape end to end, so it passes through unvalidated.
func (in *Inbound) AllowedPermissions(perms []tabdata.Permission) error {
	in.agg.SetPermissions(perms)
	in.applied(MsgAllowedPermissions)
	return nil
}

// CertificateData validates and applies certificate-chain view data.
func (in *Inbound) CertificateData(msg CertificateMessage) error {
	for _, item := range msg.Certificate {
		if item.CommonName == "" {
			return in.reject(MsgCertificateData, fmt.Errorf("certificate item without common name"))
		}
	}
	in.agg.SetCertificate(msg.Certificate)
	in.applied(MsgCertificateData)
	return nil
}

// IsPendingUpdates applies the extension-update pending flag.
func (in *Inbound) IsPendingUpdates(pending bool) error {
	in.agg.SetIsPendingUpdates(pending)
	in.applied(MsgIsPendingUpdates)
	return nil
}

// ParentEntity validates and applies owning-entity metadata.
func (in *Inbound) ParentEntity(msg ParentEntityMessage) error {
	if err := in.validate.Struct(msg); err != nil {
		return in.reject(MsgParentEntity, err)
	}
	in.agg.SetParentEntity(tabdata.Entity{
		DisplayName: msg.DisplayName,
		Prevalence:  msg.Prevalence,
	})
	in.applied(MsgParentEntity)
	return nil
}

// reject logs and counts a validation failure, then swallows it: the
// dashboard keeps showing the last good snapshot and the host receives
// no error signal.
func (in *Inbound) reject(field string, err error) error {
	in.logger.Warn("dropping invalid field update",
		zap.String("field", field),
		zap.Error(err),
	)
	if in.metrics != nil {
		in.metrics.RecordValidationFailure(field)
	}
	return nil
}

func (in *Inbound) applied(field string) {
	if in.metrics != nil {
		in.metrics.RecordFieldUpdate(field)
	}
}
