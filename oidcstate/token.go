package oidcstate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	providerSeparator = ":"
	fieldSeparator    = "."
)

// token is a parsed state token:
//
//	<providerId>:<nonce>.<timestampMillis>.<hexHmacSignature>
type token struct {
	providerID string
	nonce      string
	timestamp  string
	signature  string
}

// payload is the signed part of the token.
func (t token) payload() string {
	return t.nonce + fieldSeparator + t.timestamp
}

func (t token) String() string {
	return t.providerID + providerSeparator + t.payload() + fieldSeparator + t.signature
}

func (t token) timestampMillis() (int64, bool) {
	ms, err := strconv.ParseInt(t.timestamp, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// splitProvider splits on the first separator. ok is false when the state has
// no provider prefix at all.
func splitProvider(state string) (providerID, rest string, ok bool) {
	return strings.Cut(state, providerSeparator)
}

// splitFields splits the remainder into exactly nonce, timestamp and
// signature.
func splitFields(rest string) (nonce, timestamp, signature string, ok bool) {
	parts := strings.Split(rest, fieldSeparator)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret []byte, payload, signature string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(signature))
}
