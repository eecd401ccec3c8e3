// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces ([TokenCodec] consumers define
// their own).
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by [TokenService.Decode] for any token that
// cannot be trusted: bad signature, wrong algorithm, malformed structure,
// or expired claim. Callers must not learn which.
var ErrInvalidToken = errors.New("sec: invalid token")

// TokenClaims is the payload embedded inside a signed token.
//
// The payload is intentionally minimal: a subject (the user ID) plus the
// registered time claims. Access and refresh tokens share this shape and
// differ only in TTL — token kind is enforced by which cache namespace the
// token is stored under, not by the payload.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the owning user's integer ID.
func (c *TokenClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// TokenService signs and verifies compact self-contained tokens using HS256.
//
// It is a pure function of the configured secret: no storage, no clock state
// beyond time.Now at issuance.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService from a shared HMAC secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: token secret must not be empty")
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// Issue creates a signed token for the given user with an absolute expiry
// of now + timeToLive.
func (service *TokenService) Issue(userID int64, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Decode checks the signature and validity of a token string.
//
// # Boundary Function
//
// Decode is consumed across trust domains — the input is attacker-controlled.
// It never panics; every failure mode (garbage input, stripped signature,
// alg confusion, expired claim) collapses into [ErrInvalidToken].
func (service *TokenService) Decode(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// # Resolved Identity

// Identity is the authenticated caller attached to a request context after
// a successful access-token validation.
//
// Token carries the raw presented access token so that logout can revoke
// exactly the credential that authenticated the request.
type Identity struct {
	UserID int64
	Role   UserRole
	Token  string
}
