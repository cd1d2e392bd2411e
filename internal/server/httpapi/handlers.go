package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sealpost/internal/common"
	"github.com/dmitrijs2005/sealpost/internal/server/delivery"
	"github.com/dmitrijs2005/sealpost/internal/server/identity"
	"github.com/dmitrijs2005/sealpost/internal/server/inbox"
	"github.com/dmitrijs2005/sealpost/internal/token"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a sentinel from the common package to an HTTP status.
// Unmapped errors and stored-key corruption answer with a generic 500; the
// detail of a 500 is logged, never sent to the client.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int

	switch {
	case errors.Is(err, common.ErrMalformedToken),
		errors.Is(err, common.ErrUnsupportedAlgorithm),
		errors.Is(err, common.ErrMissingTimeClaims),
		errors.Is(err, common.ErrMissingTokenID),
		errors.Is(err, common.ErrInvalidAct),
		errors.Is(err, common.ErrorValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrMissingBearerToken),
		errors.Is(err, common.ErrIdentityMismatch),
		errors.Is(err, common.ErrUnknownIdentity),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenNotYetValid),
		errors.Is(err, common.ErrBadSignature),
		errors.Is(err, common.ErrReplayDetected):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrUnknownRecipient),
		errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrorDuplicateEmail):
		status = http.StatusConflict
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal error"})
		return
	}

	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

// authFromHeaders runs the token pipeline against the Authorization and
// X-User-Email headers. Act checks stay with the individual handlers.
func (s *Server) authFromHeaders(r *http.Request) (*identity.Identity, *token.Token, error) {
	return s.guard.Authenticate(r.Context(),
		r.Header.Get("Authorization"), r.Header.Get("X-User-Email"))
}

func actAllowed(tok *token.Token, acts ...string) bool {
	for _, a := range acts {
		if tok.Claims.Act == a {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", TS: nowTS(time.Now())})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid json body"})
		return
	}

	id, err := s.identities.Register(r.Context(), req.Email, req.SignPubB64, req.EncPubB64, req.SealedMaster)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "identity registered", "email", id.Email, "rcpt_id", id.RcptID)
	writeJSON(w, http.StatusCreated, toUserView(id))
}

// handleLogin does not mint anything: the client already proved key
// possession by signing the token, so login just returns the stored record
// (including the sealed master) for key restoration.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	id, tok, err := s.authFromHeaders(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if !actAllowed(tok, token.ActLogin) {
		s.writeError(r.Context(), w, common.ErrInvalidAct)
		return
	}

	writeJSON(w, http.StatusOK, toUserRecord(id))
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.authFromHeaders(r); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	ids, err := s.identities.List(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	out := make([]userView, 0, len(ids))
	for _, id := range ids {
		out = append(out, toUserView(id))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMessages accepts a sealed envelope for relay. The envelope is
// always queued first; live connections get a best-effort push of the exact
// queued value, so a dropped push costs nothing.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	_, tok, err := s.authFromHeaders(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if !actAllowed(tok, token.ActSend, token.ActSendAlt) {
		s.writeError(r.Context(), w, common.ErrInvalidAct)
		return
	}

	var env inbox.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid json body"})
		return
	}
	if env.V == 0 {
		env.V = 1
	}

	if _, err := s.identities.GetByRcptID(r.Context(), env.RcptID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			err = common.ErrUnknownRecipient
		}
		s.writeError(r.Context(), w, err)
		return
	}

	stored := s.inbox.Enqueue(env.RcptID, env)
	delivered := s.registry.Deliver(r.Context(), env.RcptID, delivery.Push{Type: "envelope", Data: stored})
	s.logger.Debug(r.Context(), "envelope accepted", "rcpt_id", env.RcptID, "pushed", delivered)

	writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true})
}

// handleInbox is the destructive poll: the caller may only drain its own
// handle, and the returned envelopes are gone from the queue.
func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	id, tok, err := s.authFromHeaders(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if !actAllowed(tok, token.ActFetch, token.ActFetchAlt) {
		s.writeError(r.Context(), w, common.ErrInvalidAct)
		return
	}

	rcptID := r.URL.Query().Get("rcpt_id")
	if rcptID == "" || rcptID != id.RcptID {
		s.writeError(r.Context(), w, common.ErrForbidden)
		return
	}

	envs := s.inbox.Drain(rcptID)
	if envs == nil {
		envs = []inbox.Envelope{}
	}
	writeJSON(w, http.StatusOK, envs)
}
