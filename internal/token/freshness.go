package token

import (
	"time"

	"github.com/dmitrijs2005/sealpost/internal/common"
)

// DefaultLeeway bounds acceptable clock skew between client and server.
const DefaultLeeway = 60 * time.Second

// timeNow is a test seam.
var timeNow = time.Now

// VerifyTimes validates the iat/exp claims (unix seconds) against the wall
// clock with the given leeway. The clock is read exactly once and the
// captured value is returned, so follow-up checks in the same request share
// one consistent timestamp.
func VerifyTimes(iat, exp int64, leeway time.Duration) (int64, error) {
	if leeway <= 0 {
		leeway = DefaultLeeway
	}
	now := timeNow().Unix()

	if iat == 0 || exp == 0 {
		return now, common.ErrMissingTimeClaims
	}
	if iat > now+int64(leeway.Seconds()) {
		return now, common.ErrTokenNotYetValid
	}
	if exp < now-int64(leeway.Seconds()) {
		return now, common.ErrTokenExpired
	}
	return now, nil
}
