package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/glasspane/dashboard/internal/bridge"
	"github.com/glasspane/dashboard/internal/domain/aggregator"
	"github.com/glasspane/dashboard/internal/domain/intent"
	"github.com/glasspane/dashboard/internal/domain/session"
	"github.com/glasspane/dashboard/internal/domain/tabdata"
	"github.com/glasspane/dashboard/internal/infrastructure/logging"
	"github.com/glasspane/dashboard/internal/infrastructure/monitoring"
	"github.com/glasspane/dashboard/internal/platform"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The bridge speaks to embedded webviews and extension pages,
		// which present no stable Origin.
		return true
	},
}

// Handler accepts host bridge connections.
type Handler struct {
	sessions        *session.Manager
	logger          *logging.Logger
	metrics         *monitoring.Metrics
	defaultPlatform platform.Platform
}

// NewHandler creates a WebSocket bridge handler.
func NewHandler(sessions *session.Manager, defaultPlatform platform.Platform, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Handler{
		sessions:        sessions,
		logger:          logger,
		defaultPlatform: defaultPlatform,
	}
}

// WithMetrics attaches a metrics collector.
func (h *Handler) WithMetrics(m *monitoring.Metrics) *Handler {
	h.metrics = m
	return h
}

// inboundMessage is the envelope read from the host.
type inboundMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type helloPayload struct {
	Platform string `json:"platform"`
}

type screenShownPayload struct {
	Height int `json:"height"`
}

// HandleConnection upgrades the request and runs one host session until
// the connection closes.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("bridge upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	// The first message must identify the host.
	p := h.defaultPlatform
	var first inboundMessage
	if err := conn.ReadJSON(&first); err != nil {
		h.logger.Warn("bridge closed before hello", zap.Error(err))
		return
	}
	if first.Type == "hello" {
		var hello helloPayload
		if err := json.Unmarshal(first.Payload, &hello); err == nil && platform.Platform(hello.Platform).Valid() {
			p = platform.Platform(hello.Platform)
		}
	}

	host := newHostConn(conn, p, h.metrics)
	sess := h.sessions.Create(host)
	defer h.sessions.Close(sess.ID)

	log := h.logger.With(zap.String("session_id", sess.ID), zap.String("platform", string(p)))

	// Render-layer notifications: every relevant change pushes a fresh
	// snapshot; readiness additionally fires the one-shot first paint.
	cancel := sess.Aggregator.OnUpdate(func(snap *tabdata.Snapshot) {
		if err := host.write(Message{Type: bridge.MsgUpdateTabData, Payload: snap}); err != nil {
			log.Warn("failed to push tab data", zap.Error(err))
		}
	})
	defer cancel()
	sess.Aggregator.OnReady(func(snap *tabdata.Snapshot) {
		if err := host.write(Message{Type: bridge.MsgFirstPaint, Payload: snap}); err != nil {
			log.Warn("failed to push first paint", zap.Error(err))
		}
	})

	if err := host.write(Message{Type: "ready", Payload: gin.H{"sessionId": sess.ID}}); err != nil {
		log.Warn("failed to ack hello", zap.Error(err))
		return
	}

	if first.Type != "hello" {
		// Hosts that skip hello begin with their first field update.
		h.dispatch(sess, host, first, log)
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("bridge read ended", zap.Error(err))
			}
			return
		}
		h.dispatch(sess, host, msg, log)
	}
}

// dispatch routes one host message. Malformed payloads are dropped
// (fire-and-forget delivery); only the request-data ordering violation
// is surfaced back, since it marks a host integration bug.
func (h *Handler) dispatch(sess *session.Session, host *hostConn, msg inboundMessage, log *logging.Logger) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage("in", msg.Type)
	}

	var err error
	switch msg.Type {
	case bridge.MsgRequestData:
		var payload bridge.RequestDataMessage
		if !h.decode(msg, &payload, log) {
			return
		}
		err = sess.Inbound.RequestData(payload)

	case bridge.MsgProtectionsStatus:
		var payload bridge.ProtectionsMessage
		if !h.decode(msg, &payload, log) {
			return
		}
		err = sess.Inbound.ProtectionsStatus(payload)

	case bridge.MsgLocaleSettings:
		var payload bridge.LocaleMessage
		if !h.decode(msg, &payload, log) {
			return
		}
		err = sess.Inbound.LocaleSettings(payload)

	case bridge.MsgUpgradedHTTPS:
		var upgraded bool
		if !h.decode(msg, &upgraded, log) {
			return
		}
		err = sess.Inbound.UpgradedHTTPS(upgraded)

	case bridge.MsgConsentManaged:
		var payload tabdata.ConsentUpdate
		if !h.decode(msg, &payload, log) {
			return
		}
		err = sess.Inbound.ConsentManaged(payload)

	case bridge.MsgAllowedPermissions:
		var perms []tabdata.Permission
		if !h.decode(msg, &perms, log) {
			return
		}
		err = sess.Inbound.AllowedPermissions(perms)

	case bridge.MsgCertificateData:
		var payload bridge.CertificateMessage
		if !h.decode(msg, &payload, log) {
			return
		}
		err = sess.Inbound.CertificateData(payload)

	case bridge.MsgIsPendingUpdates:
		var pending bool
		if !h.decode(msg, &pending, log) {
			return
		}
		err = sess.Inbound.IsPendingUpdates(pending)

	case bridge.MsgParentEntity:
		var payload bridge.ParentEntityMessage
		if !h.decode(msg, &payload, log) {
			return
		}
		err = sess.Inbound.ParentEntity(payload)

	case "screenShown":
		var payload screenShownPayload
		if !h.decode(msg, &payload, log) {
			return
		}
		err = sess.FirstPaint(payload.Height)

	case "toggleReportOptionsResponse":
		var opts intent.ToggleReportOptions
		if !h.decode(msg, &opts, log) {
			return
		}
		if !host.replies.Resolve(msg.ID, &opts) {
			log.Warn("unmatched toggle report reply", zap.String("id", msg.ID))
		}

	case "ping":
		if werr := host.write(Message{Type: "pong"}); werr != nil {
			log.Warn("failed to pong", zap.Error(werr))
		}

	default:
		log.Warn("unknown bridge message type", zap.String("type", msg.Type))
	}

	if err != nil {
		if errors.Is(err, aggregator.ErrProtectionsNotSet) {
			log.Error("host violated field delivery order", zap.Error(err))
			if werr := host.write(Message{Type: "error", Payload: gin.H{"message": err.Error()}}); werr != nil {
				log.Warn("failed to report contract violation", zap.Error(werr))
			}
			return
		}
		log.Warn("field update failed", zap.String("type", msg.Type), zap.Error(err))
	}
}

// decode unmarshals a payload, counting failures as validation drops.
func (h *Handler) decode(msg inboundMessage, out any, log *logging.Logger) bool {
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		log.Warn("dropping undecodable payload",
			zap.String("type", msg.Type),
			zap.Error(err),
		)
		if h.metrics != nil {
			h.metrics.RecordValidationFailure(msg.Type)
		}
		return false
	}
	return true
}
