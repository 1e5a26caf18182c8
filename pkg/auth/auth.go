// Copyright 2024 The livechat-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auth verifies bearer tokens presented during the websocket
// handshake and turns them into member identities. A connection never
// reaches the routing core without passing through an Authenticator.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/livechat-go/pkg/member"
)

// ErrInvalidToken is returned for missing, malformed, expired, or
// wrongly-signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload carried by a signed bearer token.
type Claims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// Authenticator verifies a credential and yields the verified identity.
type Authenticator interface {
	// Verify checks the raw token string and returns the member it
	// identifies, or ErrInvalidToken.
	Verify(token string) (member.Member, error)
}

// JWTAuthenticator verifies HS256-signed bearer tokens.
type JWTAuthenticator struct {
	secret []byte
}

// NewJWT creates an authenticator with the given HMAC secret.
func NewJWT(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

// Verify parses and validates the token and maps its claims to a member.
func (a *JWTAuthenticator) Verify(tokenString string) (member.Member, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return member.Member{}, ErrInvalidToken
	}

	role, err := parseRole(claims.UserType)
	if err != nil {
		return member.Member{}, ErrInvalidToken
	}
	if claims.UserID == "" {
		return member.Member{}, ErrInvalidToken
	}

	return member.New(role, claims.UserID, claims.UserName), nil
}

// Sign issues a token for the given member, valid for ttl. Used by the
// token CLI and by tests.
func (a *JWTAuthenticator) Sign(m member.Member, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:   m.ID,
		UserName: m.Name,
		UserType: string(m.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrInvalidToken
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}

func parseRole(userType string) (member.Role, error) {
	switch member.Role(userType) {
	case member.Customer:
		return member.Customer, nil
	case member.CustomerService:
		return member.CustomerService, nil
	default:
		return "", fmt.Errorf("unknown user type %q", userType)
	}
}
