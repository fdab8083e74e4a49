// Package keys parses and validates ledger signing keys.
//
// A signing key is the 32-byte ed25519 seed, base58-encoded together with
// a 4-byte double-SHA256 checksum. Parsing derives the public key and
// rejects key material whose public point does not decode on the ed25519
// curve.
package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const (
	seedLen     = 32
	checksumLen = 4
)

// SigningKey holds a validated ed25519 keypair.
type SigningKey struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// Parse decodes a base58check-encoded signing key.
func Parse(encoded string) (*SigningKey, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty signing key")
	}

	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	if len(raw) != seedLen+checksumLen {
		return nil, fmt.Errorf("signing key has %d bytes, want %d", len(raw), seedLen+checksumLen)
	}

	seed := raw[:seedLen]
	if !bytes.Equal(checksum(seed), raw[seedLen:]) {
		return nil, fmt.Errorf("signing key checksum mismatch")
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	if !isOnCurve(pub) {
		return nil, fmt.Errorf("derived public key is not on the ed25519 curve")
	}

	return &SigningKey{priv: priv, pub: pub}, nil
}

// Encode renders a seed as a base58check signing key string.
func Encode(seed []byte) (string, error) {
	if len(seed) != seedLen {
		return "", fmt.Errorf("seed has %d bytes, want %d", len(seed), seedLen)
	}
	raw := make([]byte, 0, seedLen+checksumLen)
	raw = append(raw, seed...)
	raw = append(raw, checksum(seed)...)
	return base58.Encode(raw), nil
}

// Account returns the base58-encoded public key identifying the sender.
func (k *SigningKey) Account() string {
	return base58.Encode(k.pub)
}

// Sign signs the message with the private key.
func (k *SigningKey) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}

// checksum is the first 4 bytes of SHA256(SHA256(data)).
func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:checksumLen]
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
