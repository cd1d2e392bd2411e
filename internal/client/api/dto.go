package api

import "time"

// User is the public projection of a registered identity.
type User struct {
	Email      string `json:"email"`
	RcptID     string `json:"rcpt_id"`
	EncPubB64  string `json:"enc_pub_rand_b64"`
	SignPubB64 string `json:"sign_pub_det_b64"`
}

// Record is the owner-only projection returned on login.
type Record struct {
	Email        string `json:"email"`
	SignPubB64   string `json:"sign_pub_det_b64"`
	EncPubB64    string `json:"enc_pub_rand_b64"`
	SealedMaster string `json:"c_master_b64"`
	Version      string `json:"version"`
	RcptID       string `json:"rcpt_id"`
}

// RegisterRequest carries the key material created at registration.
type RegisterRequest struct {
	Email        string `json:"email"`
	SignPubB64   string `json:"sign_pub_det_b64"`
	EncPubB64    string `json:"enc_pub_rand_b64"`
	SealedMaster string `json:"c_master_b64"`
}

// Envelope mirrors the relay's envelope format. TSServer is empty until
// the relay has accepted the envelope.
type Envelope struct {
	V         int       `json:"v"`
	RcptID    string    `json:"rcpt_id"`
	TSClient  time.Time `json:"ts_client"`
	EphPubB64 string    `json:"eph_pub_b64"`
	NonceB64  string    `json:"nonce_b64"`
	CTB64     string    `json:"ct_b64"`
	TSServer  time.Time `json:"ts_server,omitempty"`
}
