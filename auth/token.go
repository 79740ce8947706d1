/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretLength = 32

var (
	ErrExpiredToken = errors.New("auth: token has expired")
	ErrInvalidToken = errors.New("auth: token is invalid")
)

// Claims carries the subject and standard registered claims of an issued
// token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-signed JWT tokens.
type TokenService struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	timeFunc func() time.Time
}

// NewTokenService builds a token service. The secret must be at least 32
// bytes.
func NewTokenService(secret, issuer string, lifetime time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("auth: secret must be at least %d characters", minSecretLength)
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("auth: token lifetime must be positive")
	}
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
		timeFunc: time.Now,
	}, nil
}

// Issue creates a signed token for the subject. Each token gets a unique ID.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.timeFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. Expired tokens
// return ErrExpiredToken; any other failure returns ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.timeFunc)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
