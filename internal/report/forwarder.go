// Package report forwards breakage reports to a remote collection
// endpoint. Forwarding is best-effort and out-of-band: the host still
// receives every report through the bridge, and a collection outage never
// surfaces to the dashboard user.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/glasspane/dashboard/internal/domain/intent"
	"github.com/glasspane/dashboard/internal/infrastructure/logging"
	"github.com/glasspane/dashboard/internal/infrastructure/monitoring"
	"github.com/glasspane/dashboard/internal/infrastructure/resilience"
	"github.com/glasspane/dashboard/internal/platform"
)

// Forwarder posts breakage reports to the collection endpoint with
// bounded retries, behind a circuit breaker so a dead endpoint stops
// costing request attempts.
type Forwarder struct {
	endpoint string
	platform platform.Platform
	client   *retryablehttp.Client
	breaker  *resilience.Breaker
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// submission is the wire shape posted to the collection endpoint.
type submission struct {
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Platform    string `json:"platform"`
	ReportedAt  string `json:"reportedAt"`
}

// NewForwarder creates a forwarder for the given endpoint.
func NewForwarder(endpoint string, p platform.Platform, logger *logging.Logger) *Forwarder {
	if logger == nil {
		logger = logging.NewDefault()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	f := &Forwarder{
		endpoint: endpoint,
		platform: p,
		client:   client,
		logger:   logger,
	}

	f.breaker = resilience.New("report-collection", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("report collection breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return f
}

// WithMetrics attaches a metrics collector.
func (f *Forwarder) WithMetrics(m *monitoring.Metrics) *Forwarder {
	f.metrics = m
	return f
}

// SubmitReport implements intent.Reporter.
func (f *Forwarder) SubmitReport(ctx context.Context, report intent.BrokenSiteReportPayload) error {
	_, err := f.breaker.Execute(func() (any, error) {
		return nil, f.post(ctx, report)
	})

	if f.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		f.metrics.RecordReportForward(status)
	}
	if err != nil {
		return fmt.Errorf("report: failed to forward: %w", err)
	}
	return nil
}

func (f *Forwarder) post(ctx context.Context, report intent.BrokenSiteReportPayload) error {
	body, err := json.Marshal(submission{
		Category:    report.Category,
		Description: report.Description,
		Platform:    string(f.platform),
		ReportedAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("collection endpoint returned %d", resp.StatusCode)
	}
	return nil
}
