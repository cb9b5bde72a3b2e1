// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package codec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrDecode    = errors.New("malformed recipient token")
	ErrInvalidID = errors.New("recipient id must be positive")
	ErrNoSecret  = errors.New("token secret is required")
)

const (
	nonceLen = 4
	idLen    = 8
	tagLen   = 8
	tokenLen = nonceLen + idLen + tagLen
)

// Codec obfuscates recipient ids. Tokens are randomized, so the same id
// encodes differently every time.
type Codec struct {
	maskKey []byte
	tagKey  []byte
}

// New derives the mask and tag keys from secret
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	maskKey, err := deriveKey(secret, "recipient-token/mask")
	if err != nil {
		return nil, err
	}
	tagKey, err := deriveKey(secret, "recipient-token/tag")
	if err != nil {
		return nil, err
	}

	return &Codec{maskKey: maskKey, tagKey: tagKey}, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", info, err)
	}
	return key, nil
}

// Encode returns an opaque token for recipientID
// Layout before base64: nonce | id XOR mask(nonce) | tag(nonce, masked id)
func (c *Codec) Encode(recipientID int64) (string, error) {
	if recipientID <= 0 {
		return "", ErrInvalidID
	}

	buf := make([]byte, tokenLen)
	if _, err := rand.Read(buf[:nonceLen]); err != nil {
		return "", fmt.Errorf("failed to generate token nonce: %w", err)
	}

	nonce := buf[:nonceLen]
	body := buf[nonceLen : nonceLen+idLen]
	binary.BigEndian.PutUint64(body, uint64(recipientID))
	xorInto(body, c.mask(nonce))

	copy(buf[nonceLen+idLen:], c.tag(buf[:nonceLen+idLen]))

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Decode reverses Encode. Anything Encode did not produce with the same
// secret fails with ErrDecode.
func (c *Codec) Decode(token string) (int64, error) {
	buf, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(buf) != tokenLen {
		return 0, fmt.Errorf("%w: length %d", ErrDecode, len(buf))
	}

	signed, tag := buf[:nonceLen+idLen], buf[nonceLen+idLen:]
	if !hmac.Equal(tag, c.tag(signed)) {
		return 0, fmt.Errorf("%w: tag mismatch", ErrDecode)
	}

	body := make([]byte, idLen)
	copy(body, buf[nonceLen:nonceLen+idLen])
	xorInto(body, c.mask(buf[:nonceLen]))

	id := int64(binary.BigEndian.Uint64(body))
	if id <= 0 {
		return 0, fmt.Errorf("%w: bad id", ErrDecode)
	}
	return id, nil
}

func (c *Codec) mask(nonce []byte) []byte {
	h := hmac.New(sha256.New, c.maskKey)
	h.Write(nonce)
	return h.Sum(nil)[:idLen]
}

func (c *Codec) tag(data []byte) []byte {
	h := hmac.New(sha256.New, c.tagKey)
	h.Write(data)
	return h.Sum(nil)[:tagLen]
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
