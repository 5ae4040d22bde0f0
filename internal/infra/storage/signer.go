package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// URLSigner issues and verifies time-limited retrieval URLs. The signature
// covers the object path and the expiry, so neither can be swapped without
// invalidating the URL.
type URLSigner struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
}

func NewURLSigner(secret []byte, baseURL string, ttl time.Duration) *URLSigner {
	return &URLSigner{
		secret:  secret,
		baseURL: baseURL,
		ttl:     ttl,
	}
}

// Sign produces a retrieval URL for the object path, valid until now+ttl.
func (s *URLSigner) Sign(path string) (string, time.Time) {
	expires := time.Now().Add(s.ttl)
	exp := strconv.FormatInt(expires.Unix(), 10)
	sig := s.signature(path, exp)

	query := url.Values{}
	query.Set("exp", exp)
	query.Set("sig", sig)

	return s.baseURL + "/" + path + "?" + query.Encode(), expires
}

// Verify checks the signature and expiry for a presented path.
func (s *URLSigner) Verify(path, exp, sig string) error {
	expInt, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expiry")
	}
	if time.Now().Unix() > expInt {
		return fmt.Errorf("url expired")
	}

	expected := s.signature(path, exp)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func (s *URLSigner) signature(path, exp string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(path))
	mac.Write([]byte{0})
	mac.Write([]byte(exp))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
