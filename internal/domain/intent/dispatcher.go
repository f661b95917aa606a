package intent

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/glasspane/dashboard/internal/infrastructure/logging"
	"github.com/glasspane/dashboard/internal/platform"
)

var (
	// ErrTransportUnavailable reports a missing bridge transport. This is
	// a platform integration bug and fails loudly at the call site.
	ErrTransportUnavailable = errors.New("intent: bridge transport unavailable")

	// ErrNoToggleReportFlow reports a toggle-report action without a flow
	// opened by GetToggleReportOptions.
	ErrNoToggleReportFlow = errors.New("intent: no toggle report flow in progress")
)

// Outbound is the bridge side of the dispatcher: one host call per intent,
// plus the single request/reply exchange.
type Outbound interface {
	SendIntent(ctx context.Context, it Intent) error
	RequestToggleReportOptions(ctx context.Context) (*ToggleReportOptions, error)
}

// Reporter receives breakage reports for out-of-band collection. Delivery
// is best-effort and never blocks intent dispatch.
type Reporter interface {
	SubmitReport(ctx context.Context, report BrokenSiteReportPayload) error
}

// Dispatcher validates user-triggered actions and forwards them to the
// bridge adapter. It is bound to one session's transport and platform.
type Dispatcher struct {
	out      Outbound
	caps     platform.Capabilities
	logger   *logging.Logger
	reporter Reporter

	mu       sync.Mutex
	flowOpen bool
}

// NewDispatcher creates a dispatcher for one session.
func NewDispatcher(out Outbound, caps platform.Capabilities, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Dispatcher{
		out:    out,
		caps:   caps,
		logger: logger,
	}
}

// WithReporter attaches a breakage-report collector.
func (d *Dispatcher) WithReporter(r Reporter) *Dispatcher {
	d.reporter = r
	return d
}

// SetProtection toggles content blocking for the current site.
func (d *Dispatcher) SetProtection(ctx context.Context, isProtected bool, origin EventOrigin) error {
	return d.send(ctx, Intent{Kind: KindSetProtection, Payload: SetProtectionPayload{
		IsProtected: isProtected,
		EventOrigin: origin,
	}})
}

// SetAllowlisted translates the generic allowlist model into the
// protection toggle: an allowlisted site is an unprotected site.
func (d *Dispatcher) SetAllowlisted(ctx context.Context, allowlisted bool, origin EventOrigin) error {
	return d.SetProtection(ctx, !allowlisted, origin)
}

// SetPermission updates one site permission.
func (d *Dispatcher) SetPermission(ctx context.Context, permission, value string) error {
	if !d.caps.PermissionWrites {
		d.logger.Debug("permission writes suppressed on this platform",
			zap.String("permission", permission))
		return nil
	}
	if permission == "" || value == "" {
		return fmt.Errorf("intent: permission and value are required")
	}
	return d.send(ctx, Intent{Kind: KindSetPermission, Payload: SetPermissionPayload{
		Permission: permission,
		Value:      value,
	}})
}

// OpenSettings deep-links into a host settings screen.
func (d *Dispatcher) OpenSettings(ctx context.Context, target string) error {
	if !d.caps.OpenSettings {
		d.logger.Debug("settings links suppressed on this platform", zap.String("target", target))
		return nil
	}
	if target == "" {
		return fmt.Errorf("intent: settings target is required")
	}
	return d.send(ctx, Intent{Kind: KindOpenSettings, Payload: OpenSettingsPayload{Target: target}})
}

// OpenURLInNewTab opens an absolute http(s) URL in a new tab.
func (d *Dispatcher) OpenURLInNewTab(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("intent: invalid url %q", rawURL)
	}
	return d.send(ctx, Intent{Kind: KindOpenURLInNewTab, Payload: OpenURLPayload{URL: rawURL}})
}

// SubmitBrokenSiteReport sends a categorized breakage report to the host
// and, when a reporter is configured, to the collection endpoint.
func (d *Dispatcher) SubmitBrokenSiteReport(ctx context.Context, category, description string) error {
	if !d.caps.BreakageReports {
		d.logger.Debug("breakage reports suppressed on this platform")
		return nil
	}
	if category == "" {
		return fmt.Errorf("intent: report category is required")
	}

	payload := BrokenSiteReportPayload{Category: category, Description: description}
	if err := d.send(ctx, Intent{Kind: KindSubmitBrokenSiteReport, Payload: payload}); err != nil {
		return err
	}
	d.forwardReport(payload)
	return nil
}

// GetToggleReportOptions opens a toggle-report flow and suspends until the
// host replies with the values a report would disclose. The wait is
// unbounded here; callers bound it through ctx.
func (d *Dispatcher) GetToggleReportOptions(ctx context.Context) (*ToggleReportOptions, error) {
	if !d.caps.ToggleReports {
		return nil, fmt.Errorf("intent: toggle reports unsupported on this platform")
	}
	if d.out == nil {
		return nil, ErrTransportUnavailable
	}

	opts, err := d.out.RequestToggleReportOptions(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.flowOpen = true
	d.mu.Unlock()
	return opts, nil
}

// SendToggleBreakageReport accepts the toggle breakage report and closes
// the flow.
func (d *Dispatcher) SendToggleBreakageReport(ctx context.Context) error {
	if err := d.closeFlow(); err != nil {
		return err
	}
	if err := d.send(ctx, Intent{Kind: KindSendToggleBreakageReport}); err != nil {
		return err
	}
	d.forwardReport(BrokenSiteReportPayload{Category: "toggle"})
	return nil
}

// RejectToggleBreakageReport declines the toggle breakage report and
// closes the flow.
func (d *Dispatcher) RejectToggleBreakageReport(ctx context.Context) error {
	if err := d.closeFlow(); err != nil {
		return err
	}
	return d.send(ctx, Intent{Kind: KindRejectToggleBreakageReport})
}

// SeeWhatIsSent asks the host to show the report disclosure. The flow
// stays open.
func (d *Dispatcher) SeeWhatIsSent(ctx context.Context) error {
	d.mu.Lock()
	open := d.flowOpen
	d.mu.Unlock()
	if !open {
		return ErrNoToggleReportFlow
	}
	return d.send(ctx, Intent{Kind: KindSeeWhatIsSent})
}

// SetSize reports the rendered dashboard height. On platforms that manage
// sizing natively this is a named suppression, not an error.
func (d *Dispatcher) SetSize(ctx context.Context, height int) error {
	if !d.caps.SetSize {
		d.logger.Debug("size reporting suppressed on this platform", zap.Int("height", height))
		return nil
	}
	if height <= 0 {
		return fmt.Errorf("intent: invalid height %d", height)
	}
	return d.send(ctx, Intent{Kind: KindSetSize, Payload: SetSizePayload{Height: height}})
}

// Close dismisses the dashboard.
func (d *Dispatcher) Close(ctx context.Context, origin EventOrigin) error {
	return d.send(ctx, Intent{Kind: KindClose, Payload: ClosePayload{EventOrigin: origin}})
}

func (d *Dispatcher) send(ctx context.Context, it Intent) error {
	if d.out == nil {
		return ErrTransportUnavailable
	}
	if err := d.out.SendIntent(ctx, it); err != nil {
		return fmt.Errorf("intent: failed to dispatch %s: %w", it.Kind, err)
	}
	return nil
}

func (d *Dispatcher) closeFlow() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.flowOpen {
		return ErrNoToggleReportFlow
	}
	d.flowOpen = false
	return nil
}

// forwardReport delivers a report copy to the collector without blocking
// the dispatch path.
func (d *Dispatcher) forwardReport(report BrokenSiteReportPayload) {
	if d.reporter == nil {
		return
	}
	go func() {
		if err := d.reporter.SubmitReport(context.Background(), report); err != nil {
			d.logger.Warn("failed to forward breakage report", zap.Error(err))
		}
	}()
}
