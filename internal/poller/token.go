package poller

import (
	"context"
	"errors"
	"fmt"

	"runclub-dashboard/internal/crypto"
)

// expirySafetyMarginS guards against upstream clock skew: a token expiring
// within the margin is treated as already expired
const expirySafetyMarginS = 60

// ErrTokenNotConfigured means no token row exists for the configured
// service account, i.e. the account was never authorized
var ErrTokenNotConfigured = errors.New("no token stored for service account: authorize via /api/auth/strava/start first")

// AccessToken returns a valid access token for the configured service
// account, refreshing and persisting a new token pair when the stored one
// expires within the safety margin.
//
// Concurrent callers observing a near-expired token may both refresh; the
// last write to the store wins.
func (p *Poller) AccessToken(ctx context.Context) (string, error) {
	athleteID := p.cfg.StravaServiceAthleteID
	if athleteID == "" {
		return "", fmt.Errorf("STRAVA_SERVICE_ATHLETE_ID is not set: %w", ErrTokenNotConfigured)
	}

	row, err := p.db.GetAthleteToken(athleteID)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", fmt.Errorf("athlete %s: %w", athleteID, ErrTokenNotConfigured)
	}

	key := p.cfg.EncryptionKey()

	if row.ExpiresAt > p.now().Unix()+expirySafetyMarginS && row.AccessTokenEnc != "" {
		return crypto.DecryptString(row.AccessTokenEnc, key)
	}

	refreshToken, err := crypto.DecryptString(row.RefreshTokenEnc, key)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	p.logger.Info("refreshing service account token", "athlete_id", athleteID)

	refreshed, err := p.client.RefreshToken(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	refreshEnc, err := crypto.EncryptString(refreshed.RefreshToken, key)
	if err != nil {
		return "", err
	}
	accessEnc, err := crypto.EncryptString(refreshed.AccessToken, key)
	if err != nil {
		return "", err
	}

	// Preserve the previously granted scope when the response omits it
	scope := refreshed.Scope
	if scope == nil {
		scope = row.Scope
	}

	if err := p.db.UpdateAthleteToken(athleteID, refreshEnc, accessEnc, refreshed.ExpiresAt, scope); err != nil {
		return "", err
	}

	return refreshed.AccessToken, nil
}
