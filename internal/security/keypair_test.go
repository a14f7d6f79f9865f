package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jervis/internal/doclinks"
	jerrors "git.home.luguber.info/inful/jervis/internal/foundation/errors"
)

var testKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

func rsaPEM(t *testing.T) []byte {
	t.Helper()
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(testKey())})
}

func TestDecodeKeyPair(t *testing.T) {
	t.Run("pkcs1", func(t *testing.T) {
		kp, err := DecodeKeyPair(rsaPEM(t))
		require.NoError(t, err)
		assert.Equal(t, 2048, kp.Bits())
	})

	t.Run("pkcs8", func(t *testing.T) {
		der, err := x509.MarshalPKCS8PrivateKey(testKey())
		require.NoError(t, err)
		kp, err := DecodeKeyPair(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
		require.NoError(t, err)
		assert.True(t, kp.PrivateKey().Equal(testKey()))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := DecodeKeyPair(nil)
		require.ErrorIs(t, err, jerrors.ErrKeyPairDecode)
	})

	t.Run("garbage keeps cause", func(t *testing.T) {
		_, err := DecodeKeyPair([]byte("not a key"))
		require.ErrorIs(t, err, jerrors.ErrKeyPairDecode)
		require.ErrorIs(t, err, jerrors.ErrSecurity)
		je, _ := jerrors.As(err)
		assert.NotNil(t, je.Cause())
	})

	t.Run("not rsa", func(t *testing.T) {
		ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		der, err := x509.MarshalPKCS8PrivateKey(ec)
		require.NoError(t, err)

		_, err = DecodeKeyPair(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
		require.ErrorIs(t, err, jerrors.ErrKeyPairDecode)
		assert.Contains(t, err.Error(), "expected an RSA key")
	})
}

func TestEncryptDecrypt(t *testing.T) {
	kp, err := DecodeKeyPair(rsaPEM(t))
	require.NoError(t, err)

	ciphertext, err := kp.Encrypt("s3cr3t")
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "s3cr3t")

	plaintext, err := kp.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", plaintext)
}

func TestEncrypt_TooLong(t *testing.T) {
	kp, err := DecodeKeyPair(rsaPEM(t))
	require.NoError(t, err)

	_, err = kp.Encrypt(strings.Repeat("x", 1024))
	require.ErrorIs(t, err, jerrors.ErrSecurity)
	assert.Equal(t, jerrors.KindNone, jerrors.KindOf(err))
}

func TestDecrypt_Errors(t *testing.T) {
	kp, err := DecodeKeyPair(rsaPEM(t))
	require.NoError(t, err)

	_, err = kp.Decrypt("%%% not base64")
	require.ErrorIs(t, err, jerrors.ErrDecrypt)
	assert.Contains(t, err.Error(), "ciphertext is not valid base64.")

	_, err = kp.Decrypt("aGVsbG8=")
	require.ErrorIs(t, err, jerrors.ErrDecrypt)
	je, _ := jerrors.As(err)
	assert.NotNil(t, je.Cause())
	assert.Equal(t, doclinks.TopicSecureSecrets.DefaultURL(), je.DocumentationURL())
}

func TestWithErrors(t *testing.T) {
	registry := doclinks.NewRegistry()
	require.NoError(t, registry.Override(doclinks.TopicSecureSecrets, "https://wiki.example.com/secrets"))

	_, err := DecodeKeyPair(nil, WithErrors(jerrors.NewFactory(registry)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "https://wiki.example.com/secrets")
}

func TestLoadKeyPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_rsa")
	require.NoError(t, os.WriteFile(path, rsaPEM(t), 0o600))

	kp, err := LoadKeyPair(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, kp.Bits())
}
