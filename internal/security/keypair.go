// Package security encrypts and decrypts project secrets with an RSA key
// pair. Ciphertext is RSA-OAEP (SHA-256) encoded as standard base64.
package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"

	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
)

// KeyPair holds a decoded RSA private key.
type KeyPair struct {
	key  *rsa.PrivateKey
	errs *jerrors.Factory
}

// Option configures DecodeKeyPair.
type Option func(*KeyPair)

// WithErrors makes the key pair report failures through errs.
func WithErrors(errs *jerrors.Factory) Option {
	return func(k *KeyPair) {
		if errs != nil {
			k.errs = errs
		}
	}
}

// DecodeKeyPair parses a PEM encoded RSA private key. PKCS#1, PKCS#8 and
// OpenSSH encodings are accepted.
func DecodeKeyPair(pemBytes []byte, opts ...Option) (*KeyPair, error) {
	k := &KeyPair{errs: jerrors.Default()}
	for _, opt := range opts {
		opt(k)
	}

	if len(pemBytes) == 0 {
		return nil, k.errs.KeyPairDecode("private key is empty.")
	}
	raw, err := ssh.ParseRawPrivateKey(pemBytes)
	if err != nil {
		return nil, k.errs.KeyPairDecode("private key could not be parsed.").WithCause(err)
	}
	key, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, k.errs.KeyPairDecode(fmt.Sprintf("private key is %T, expected an RSA key.", raw))
	}
	k.key = key
	return k, nil
}

// LoadKeyPair reads and decodes the private key file at path.
func LoadKeyPair(path string, opts ...Option) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	return DecodeKeyPair(data, opts...)
}

// PrivateKey returns the decoded key.
func (k *KeyPair) PrivateKey() *rsa.PrivateKey {
	return k.key
}

// Bits returns the key size.
func (k *KeyPair) Bits() int {
	return k.key.N.BitLen()
}

// Encrypt returns the base64 ciphertext of plaintext.
func (k *KeyPair) Encrypt(plaintext string) (string, error) {
	out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &k.key.PublicKey, []byte(plaintext), nil)
	if err != nil {
		return "", k.errs.Security(fmt.Sprintf("secret could not be encrypted with a %d bit key.", k.Bits())).WithCause(err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func (k *KeyPair) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", k.errs.Decrypt("ciphertext is not valid base64.").WithCause(err)
	}
	out, err := rsa.DecryptOAEP(sha256.New(), nil, k.key, data, nil)
	if err != nil {
		return "", k.errs.Decrypt("ciphertext was not encrypted with this key pair.").WithCause(err)
	}
	return string(out), nil
}
