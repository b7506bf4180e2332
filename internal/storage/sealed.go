package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrUnsealable is returned when a stored value cannot be decrypted with the current key.
var ErrUnsealable = errors.New("storage: value cannot be unsealed")

const nonceSize = 24

type sealed struct {
	inner Store
	key   [32]byte
}

// Sealed encrypts every value written to inner with NaCl secretbox.
func Sealed(inner Store, key [32]byte) Store {
	return &sealed{inner: inner, key: key}
}

// ParseSealKey decodes a hex encoded 32 byte key.
func ParseSealKey(s string) ([32]byte, error) {
	var key [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("decode seal key: %w", err)
	}
	if len(raw) != len(key) {
		return key, fmt.Errorf("seal key must be %d bytes, got %d", len(key), len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

func (s *sealed) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	box, err := base64.RawStdEncoding.DecodeString(val)
	if err != nil || len(box) < nonceSize {
		return "", false, ErrUnsealable
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, opened := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !opened {
		return "", false, ErrUnsealable
	}
	return string(plain), true, nil
}

func (s *sealed) Set(ctx context.Context, key, value string) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return s.inner.Set(ctx, key, base64.RawStdEncoding.EncodeToString(box))
}

func (s *sealed) Remove(ctx context.Context, keys ...string) error {
	return s.inner.Remove(ctx, keys...)
}

func (s *sealed) Ping(ctx context.Context) error {
	return Ping(ctx, s.inner)
}
