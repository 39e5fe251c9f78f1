package family

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InviteTTL is how long an invite link stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

// InviteSigner issues and verifies short-lived invite tokens, so a
// shared link is enough to join a family without an account lookup.
type InviteSigner struct {
	secret []byte
}

// NewInviteSigner creates a signer from the configured secret.
func NewInviteSigner(secret string) InviteSigner {
	return InviteSigner{secret: []byte(secret)}
}

// Sign creates an invite token for the given family.
func (s InviteSigner) Sign(familyID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"fam": familyID,
		"iat": now.Unix(),
		"exp": now.Add(InviteTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invite token: %w", err)
	}
	return signed, nil
}

// Verify checks a token and returns the family id it invites to.
func (s InviteSigner) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid invite token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid invite token")
	}
	familyID, ok := claims["fam"].(string)
	if !ok || familyID == "" {
		return "", fmt.Errorf("invite token missing family claim")
	}
	return familyID, nil
}
