package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletscope/internal/config"
)

// --- helpers ---

func genRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return key
}

func writePrivatePEM(t *testing.T, key *rsa.PrivateKey, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "key.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	return path
}

func writePublicPEM(t *testing.T, key *rsa.PrivateKey, dir string) string {
	t.Helper()

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	path := filepath.Join(dir, "key.pub.pem")
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	return path
}

func testPair(t *testing.T) (*RS256Signer, *RS256Verifier) {
	t.Helper()

	dir := t.TempDir()
	key := genRSAKey(t)

	cfg := &config.JWTConfig{
		PrivateKeyPath: writePrivatePEM(t, key, dir),
		PublicKeyPath:  writePublicPEM(t, key, dir),
		Issuer:         "walletscope",
		Audience:       "dashboard",
	}

	signer, err := NewRS256Signer(cfg)
	require.NoError(t, err)

	verifier, err := NewRS256Verifier(cfg)
	require.NoError(t, err)

	return signer, verifier
}

// --- tests ---

func TestMintAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	signer, verifier := testPair(t)

	token, err := signer.Mint("user-1", time.Hour)
	require.NoError(t, err)

	claims, err := verifier.VerifyBearer("Bearer " + token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "walletscope", claims.Issuer)
}

func TestVerifyBearer_MalformedHeader(t *testing.T) {
	t.Parallel()

	_, verifier := testPair(t)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "token-without-scheme"} {
		_, err := verifier.VerifyBearer(h)
		assert.ErrorIs(t, err, ErrNoBearerToken, "header %q", h)
	}
}

func TestVerifyBearer_WrongKeyRejected(t *testing.T) {
	t.Parallel()

	signer, _ := testPair(t)
	_, otherVerifier := testPair(t)

	token, err := signer.Mint("user-1", time.Hour)
	require.NoError(t, err)

	_, err = otherVerifier.VerifyBearer("Bearer " + token)
	assert.Error(t, err)
}

func TestVerifyBearer_ExpiredToken(t *testing.T) {
	t.Parallel()

	signer, verifier := testPair(t)
	verifier.Leeway = time.Millisecond

	token, err := signer.Mint("user-1", -time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyBearer("Bearer " + token)
	assert.Error(t, err)
}

func TestNewRS256Signer_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := NewRS256Signer(&config.JWTConfig{})
	assert.Error(t, err)
}
