// Package revocation remembers revoked access and refresh token IDs until
// the tokens would have expired anyway.
package revocation

import (
	"fmt"
	"time"

	"changepoint/pkg/platform/sentinel"
)

// Redis keys are "changepoint:revoked:<jti>".
const revokedTokenKeyPrefix = "changepoint:revoked:"

// validateTTL rejects entries that would never expire or are already gone.
func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revocation ttl %s: %w", ttl, sentinel.ErrInvalidState)
	}
	return nil
}
