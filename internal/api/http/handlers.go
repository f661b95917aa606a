// Package http exposes the render-layer API: snapshot reads gated on
// aggregator readiness, and one route per outbound intent.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glasspane/dashboard/internal/domain/intent"
	"github.com/glasspane/dashboard/internal/domain/session"
	"github.com/glasspane/dashboard/internal/infrastructure/logging"
)

// Handlers implements the render-layer HTTP API.
type Handlers struct {
	sessions      *session.Manager
	logger        *logging.Logger
	replyDeadline time.Duration
	startTime     time.Time
}

// NewHandlers creates the HTTP handlers. replyDeadline bounds the single
// awaited intent; zero leaves it unbounded.
func NewHandlers(sessions *session.Manager, replyDeadline time.Duration, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Handlers{
		sessions:      sessions,
		logger:        logger,
		replyDeadline: replyDeadline,
		startTime:     time.Now(),
	}
}

// Root returns service identification.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "privacy-dashboard",
		"status":  "running",
	})
}

// Health returns liveness and session counts.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.startTime).Seconds(),
		"tabs":   h.sessions.Count(),
	})
}

// ListTabs returns all live tab sessions.
func (h *Handlers) ListTabs(c *gin.Context) {
	sessions := h.sessions.List()
	tabs := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		tabs = append(tabs, gin.H{
			"id":         s.ID,
			"platform":   s.Platform,
			"ready":      s.Aggregator.Ready(),
			"created_at": s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tabs": tabs})
}

// GetSnapshot returns the combined snapshot, or a pending marker while
// the readiness gate is open.
func (h *Handlers) GetSnapshot(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	snap := sess.Aggregator.Snapshot()
	if snap == nil {
		c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// WaitSnapshot blocks until the first complete snapshot exists or the
// request context ends. This is the HTTP face of the pending-render
// queue; deadlines are the caller's to layer via context.
func (h *Handlers) WaitSnapshot(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	snap, err := sess.Aggregator.Wait(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "wait aborted: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SetProtection toggles protection for the tab's site.
func (h *Handlers) SetProtection(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req ProtectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := sess.Dispatcher.SetAllowlisted(c.Request.Context(), *req.Allowlisted, intent.EventOrigin{Screen: req.Screen})
	h.intentResult(c, err)
}

// SetPermission updates one site permission.
func (h *Handlers) SetPermission(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.intentResult(c, sess.Dispatcher.SetPermission(c.Request.Context(), req.Permission, req.Value))
}

// OpenSettings deep-links into a host settings screen.
func (h *Handlers) OpenSettings(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req OpenSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.intentResult(c, sess.Dispatcher.OpenSettings(c.Request.Context(), req.Target))
}

// OpenURL opens a URL in a new tab.
func (h *Handlers) OpenURL(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req OpenURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.intentResult(c, sess.Dispatcher.OpenURLInNewTab(c.Request.Context(), req.URL))
}

// SubmitReport submits a categorized breakage report.
func (h *Handlers) SubmitReport(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.intentResult(c, sess.Dispatcher.SubmitBrokenSiteReport(c.Request.Context(), req.Category, req.Description))
}

// ToggleReportOptions opens a toggle-report flow and returns the values
// the report would disclose. The optional configured deadline bounds the
// host reply wait.
func (h *Handlers) ToggleReportOptions(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if h.replyDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.replyDeadline)
		defer cancel()
	}

	opts, err := sess.Dispatcher.GetToggleReportOptions(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "host did not reply"})
			return
		}
		h.intentResult(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// ToggleReportSend accepts the toggle breakage report.
func (h *Handlers) ToggleReportSend(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.intentResult(c, sess.Dispatcher.SendToggleBreakageReport(c.Request.Context()))
}

// ToggleReportReject declines the toggle breakage report.
func (h *Handlers) ToggleReportReject(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.intentResult(c, sess.Dispatcher.RejectToggleBreakageReport(c.Request.Context()))
}

// ToggleReportDisclosure shows what a toggle report would send.
func (h *Handlers) ToggleReportDisclosure(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.intentResult(c, sess.Dispatcher.SeeWhatIsSent(c.Request.Context()))
}

// SetSize reports the rendered dashboard height.
func (h *Handlers) SetSize(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.intentResult(c, sess.Dispatcher.SetSize(c.Request.Context(), req.Height))
}

// CloseTab dismisses the dashboard.
func (h *Handlers) CloseTab(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.intentResult(c, sess.Dispatcher.Close(c.Request.Context(), intent.EventOrigin{Screen: req.Screen}))
}

func (h *Handlers) session(c *gin.Context) (*session.Session, bool) {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tab session"})
		return nil, false
	}
	return sess, true
}

func (h *Handlers) intentResult(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"dispatched": true})
	case errors.Is(err, intent.ErrNoToggleReportFlow):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, intent.ErrTransportUnavailable):
		h.logger.Error("bridge transport missing", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
