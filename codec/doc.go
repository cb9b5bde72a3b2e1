// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package codec turns recipient ids into opaque tokens and back.
//
// A token is base64url(nonce || id XOR mask || tag). Keys come from the
// TOKEN_SECRET through HKDF-SHA256; a wrong secret or a tampered token
// fails with ErrDecode.
package codec
