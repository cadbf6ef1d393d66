package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cancelAudience = "appointment-cancel"

// CancelTokenManager signs and verifies the one-purpose tokens embedded in
// appointment cancellation links.
type CancelTokenManager struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewCancelTokenManager(secret string, ttl time.Duration) *CancelTokenManager {
	return &CancelTokenManager{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

type CancelClaims struct {
	AppointmentID string `json:"aid"`
	jwt.RegisteredClaims
}

// Generate returns a token for appointmentID and its expiry.
func (m *CancelTokenManager) Generate(appointmentID string) (string, time.Time, error) {
	if len(m.Secret) == 0 {
		return "", time.Time{}, errors.New("cancel token secret is not configured")
	}
	now := m.clock()
	exp := now.Add(m.TTL)
	claims := &CancelClaims{
		AppointmentID: appointmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   appointmentID,
			Audience:  jwt.ClaimStrings{cancelAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse verifies tokenStr and returns the appointment id it was issued for.
func (m *CancelTokenManager) Parse(tokenStr string) (string, error) {
	if len(m.Secret) == 0 {
		return "", errors.New("cancel token secret is not configured")
	}
	claims := &CancelClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithAudience(cancelAudience), jwt.WithTimeFunc(m.clock))
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.AppointmentID == "" {
		return "", errors.New("invalid token")
	}
	return claims.AppointmentID, nil
}

func (m *CancelTokenManager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}
