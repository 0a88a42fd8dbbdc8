package envelope

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/illarion/stash/internal/crypto"
)

// Version1 is the current token format prefix. The version governs the
// payload layout and the KDF parameters, so tokens stay decryptable
// across releases.
const Version1 = "s1"

// ErrAuthFailed is the single error returned for every Open failure:
// wrong passkey, tampered ciphertext, or malformed token. Collapsing
// these into one kind prevents an oracle distinguishing them.
var ErrAuthFailed = errors.New("authentication failed")

var encoding = base64.RawURLEncoding

// Seal encrypts plaintext under a key derived from the passkey and returns
// a self-contained text token:
//
//	s1.base64url(salt || nonce || ciphertext || tag)
//
// A fresh salt and nonce are generated on every call, so sealing the same
// plaintext twice yields different tokens. Decrypting requires nothing but
// the token and the passkey.
func Seal(plaintext, passkey []byte) (string, error) {
	salt, err := crypto.NewSalt()
	if err != nil {
		return "", err
	}

	key := crypto.DeriveKey(passkey, salt)
	defer crypto.ClearBytes(key)

	enc := crypto.NewEncryptor(key)
	defer enc.Destroy()

	sealed, err := enc.Encrypt(plaintext)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, len(salt)+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, sealed...)

	return Version1 + "." + encoding.EncodeToString(payload), nil
}

// Open parses a token produced by Seal, re-derives the key from the
// embedded salt and the supplied passkey, and decrypts. All failures
// return ErrAuthFailed.
func Open(token string, passkey []byte) ([]byte, error) {
	version, body, ok := strings.Cut(token, ".")
	if !ok || version != Version1 {
		return nil, ErrAuthFailed
	}

	payload, err := encoding.DecodeString(body)
	if err != nil {
		return nil, ErrAuthFailed
	}
	if len(payload) < crypto.SaltSize+crypto.NonceSize+crypto.TagSize {
		return nil, ErrAuthFailed
	}

	salt := payload[:crypto.SaltSize]
	sealed := payload[crypto.SaltSize:]

	key := crypto.DeriveKey(passkey, salt)
	defer crypto.ClearBytes(key)

	enc := crypto.NewEncryptor(key)
	defer enc.Destroy()

	plaintext, err := enc.Decrypt(sealed)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}
