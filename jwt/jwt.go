// Package jwt creates and validates the session tokens the identity
// provider hands out. Tokens are HMAC-SHA256 signed with the server secret.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

type Claims struct {
	Issuer         string `json:"iss,omitempty"`
	Subject        string `json:"sub"`
	Audience       string `json:"aud"`
	ExpirationTime string `json:"exp,omitempty"`
	IssuedAt       string `json:"iat,omitempty"`
	// Groups carries the identity's group memberships.
	Groups []string `json:"groups,omitempty"`
	// DisplayName is the human-readable name shown in rider selectors.
	DisplayName string `json:"displayName,omitempty"`
}

// Create creates a server signed JWT
func Create(claims Claims, secret []byte) (string, error) {
	header := Header{
		Type:      "JWT",
		Algorithm: "HS256",
	}
	headerStr, err := json.Marshal(header)
	if err != nil {
		return "", err
	}

	payloadStr, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerB64 := base64.RawURLEncoding.EncodeToString(headerStr)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadStr)
	target := headerB64 + "." + payloadB64

	signatureB64 := base64.RawURLEncoding.EncodeToString(sign([]byte(target), secret))

	return target + "." + signatureB64, nil
}

// Validate checks is jwt signature valid and not expired
func Validate(token string, secret []byte) (*Header, *Claims, error) {

	split := strings.Split(token, ".")
	if len(split) != 3 {
		return nil, nil, fmt.Errorf("invalid jwt format")
	}

	var header Header
	headerBytes, err := base64.RawURLEncoding.DecodeString(split[0])
	if err != nil {
		return nil, nil, err
	}
	err = json.Unmarshal(headerBytes, &header)
	if err != nil {
		return nil, nil, err
	}

	// check jwt type
	if header.Type != "JWT" || header.Algorithm != "HS256" {
		return nil, nil, fmt.Errorf("unsupported jwt type")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(split[1])
	if err != nil {
		return nil, nil, err
	}

	var claims Claims
	err = json.Unmarshal(payloadBytes, &claims)
	if err != nil {
		return nil, nil, err
	}

	// check exp
	if claims.ExpirationTime != "" {
		exp, err := strconv.ParseInt(claims.ExpirationTime, 10, 64)
		if err != nil {
			return nil, nil, err
		}
		now := time.Now().Unix()
		if exp < now {
			return nil, nil, fmt.Errorf("jwt is already expired")
		}
	}

	// check signature
	signatureBytes, err := base64.RawURLEncoding.DecodeString(split[2])
	if err != nil {
		return nil, nil, err
	}

	expected := sign([]byte(split[0]+"."+split[1]), secret)
	if !hmac.Equal(signatureBytes, expected) {
		return nil, nil, fmt.Errorf("jwt signature mismatch")
	}

	// all checks passed
	return &header, &claims, nil
}

func sign(target, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(target)
	return mac.Sum(nil)
}
