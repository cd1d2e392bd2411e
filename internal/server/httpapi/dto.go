package httpapi

import (
	"time"

	"github.com/dmitrijs2005/sealpost/internal/server/identity"
)

// Wire DTOs. Key material travels as opaque base64 strings and is never
// decoded here.

type registerRequest struct {
	Email        string `json:"email"`
	SignPubB64   string `json:"sign_pub_det_b64"`
	EncPubB64    string `json:"enc_pub_rand_b64"`
	SealedMaster string `json:"c_master_b64"`
}

// userView is the public projection of an identity: enough for other
// participants to address and seal messages to it.
type userView struct {
	Email      string `json:"email"`
	RcptID     string `json:"rcpt_id"`
	EncPubB64  string `json:"enc_pub_rand_b64"`
	SignPubB64 string `json:"sign_pub_det_b64"`
}

// userRecord is the owner-only projection returned on login. It includes
// the sealed master secret the client needs to restore its keys.
type userRecord struct {
	Email        string `json:"email"`
	SignPubB64   string `json:"sign_pub_det_b64"`
	EncPubB64    string `json:"enc_pub_rand_b64"`
	SealedMaster string `json:"c_master_b64"`
	Version      string `json:"version"`
	RcptID       string `json:"rcpt_id"`
}

type healthResponse struct {
	Status string `json:"status"`
	TS     string `json:"ts"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func toUserView(id *identity.Identity) userView {
	return userView{
		Email:      id.Email,
		RcptID:     id.RcptID,
		EncPubB64:  id.EncPub,
		SignPubB64: id.SignPub,
	}
}

func toUserRecord(id *identity.Identity) userRecord {
	return userRecord{
		Email:        id.Email,
		SignPubB64:   id.SignPub,
		EncPubB64:    id.EncPub,
		SealedMaster: id.SealedMaster,
		Version:      id.Version,
		RcptID:       id.RcptID,
	}
}

func nowTS(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
