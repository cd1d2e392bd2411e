package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dmitrijs2005/sealpost/internal/common"
	"github.com/dmitrijs2005/sealpost/internal/server/delivery"
	"github.com/dmitrijs2005/sealpost/internal/token"
)

// Application close codes for the realtime channel, mirroring the HTTP
// status split: 4400 for structurally bad handshakes, 4401 for failed
// authentication, 4403 for a handle the token does not own.
const (
	closeBadRequest   websocket.StatusCode = 4400
	closeUnauthorized websocket.StatusCode = 4401
	closeForbidden    websocket.StatusCode = 4403
)

const pushWriteTimeout = 5 * time.Second

// wsConn adapts a websocket connection to the delivery registry. Writes
// carry their own deadline so one stuck peer cannot hold a fan-out.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Send(ctx context.Context, p delivery.Push) error {
	ctx, cancel := context.WithTimeout(ctx, pushWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, p)
}

func closeCodeFor(err error) websocket.StatusCode {
	switch {
	case errors.Is(err, common.ErrMalformedToken),
		errors.Is(err, common.ErrUnsupportedAlgorithm),
		errors.Is(err, common.ErrMissingTimeClaims),
		errors.Is(err, common.ErrMissingTokenID),
		errors.Is(err, common.ErrInvalidAct):
		return closeBadRequest
	case errors.Is(err, common.ErrIdentityMismatch),
		errors.Is(err, common.ErrUnknownIdentity),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenNotYetValid),
		errors.Is(err, common.ErrBadSignature),
		errors.Is(err, common.ErrReplayDetected):
		return closeUnauthorized
	default:
		return websocket.StatusInternalError
	}
}

// handleWS upgrades /ws/inbox?token=&email=. The token travels in the
// query string because browser WebSocket clients cannot set headers. After
// the handshake passes the same pipeline as the HTTP endpoints, the
// connection is registered for pushes, any queued envelopes are flushed as
// one inbox.init frame, and a keepalive read loop runs until the peer goes
// away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins,
	})
	if err != nil {
		s.logger.Warn(r.Context(), "websocket accept failed", "error", err)
		return
	}

	q := r.URL.Query()
	id, tok, err := s.guard.AuthenticateToken(r.Context(), q.Get("token"), q.Get("email"))
	if err != nil {
		code := closeCodeFor(err)
		if code == websocket.StatusInternalError {
			s.logger.Error(r.Context(), "websocket auth failed", "error", err)
		}
		_ = conn.Close(code, "authentication failed")
		return
	}

	if !actAllowed(tok, token.ActWSOpen, token.ActInboxOpen) {
		_ = conn.Close(closeBadRequest, "invalid act")
		return
	}
	if tok.Claims.RcptID == "" || tok.Claims.RcptID != id.RcptID {
		_ = conn.Close(closeForbidden, "rcpt_id not owned by caller")
		return
	}
	rcptID := id.RcptID

	wc := &wsConn{conn: conn}
	s.registry.Register(rcptID, wc)
	defer s.registry.Unregister(rcptID, wc)
	s.logger.Info(r.Context(), "realtime channel open", "rcpt_id", rcptID)

	// Flush anything queued while the recipient was offline. The drain and
	// the registration above make the fallback seamless: everything arrives
	// exactly once, either in inbox.init or as a live push.
	if pending := s.inbox.Drain(rcptID); len(pending) > 0 {
		if err := wc.Send(r.Context(), delivery.Push{Type: "inbox.init", Data: pending}); err != nil {
			_ = conn.Close(websocket.StatusInternalError, "initial flush failed")
			return
		}
	}

	// Keepalive loop. Clients may send ping frames; the payload is ignored.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			s.logger.Debug(r.Context(), "realtime channel closed", "rcpt_id", rcptID, "reason", err)
			return
		}
	}
}
