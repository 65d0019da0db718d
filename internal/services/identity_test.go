package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "https://securetoken.google.com/resume-project"
	testAudience = "resume-project"
)

func signHMAC(t *testing.T, claims jwt.Claims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
}

func TestIdentityVerifier_ValidTokenIsDeterministic(t *testing.T) {
	verifier := NewIdentityVerifier(NewStaticKeySet(testSecret), testIssuer, testAudience)
	token := signHMAC(t, validClaims("user-123"), testSecret)

	first, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	second, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", first)
	assert.Equal(t, first, second)
}

func TestIdentityVerifier_Rejections(t *testing.T) {
	verifier := NewIdentityVerifier(NewStaticKeySet(testSecret), testIssuer, testAudience)

	expired := validClaims("user-123")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := validClaims("user-123")
	wrongIssuer.Issuer = "https://evil.example.com"

	wrongAudience := validClaims("user-123")
	wrongAudience.Audience = jwt.ClaimStrings{"other-project"}

	noExpiry := validClaims("user-123")
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: "   "},
		{name: "wrong secret", token: signHMAC(t, validClaims("user-123"), "other-secret")},
		{name: "expired", token: signHMAC(t, expired, testSecret)},
		{name: "wrong issuer", token: signHMAC(t, wrongIssuer, testSecret)},
		{name: "wrong audience", token: signHMAC(t, wrongAudience, testSecret)},
		{name: "missing subject", token: signHMAC(t, validClaims(""), testSecret)},
		{name: "oversized subject", token: signHMAC(t, validClaims(strings.Repeat("a", 129)), testSecret)},
		{name: "missing expiry", token: signHMAC(t, noExpiry, testSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := verifier.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.Empty(t, subject)
			assert.Equal(t, apperrors.KindInvalidCredential, apperrors.KindOf(err))
		})
	}
}

func TestIdentityVerifier_RejectsAlgorithmOutsideKeySet(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims("user-123")).SignedString(key)
	require.NoError(t, err)

	verifier := NewIdentityVerifier(NewStaticKeySet(testSecret), testIssuer, testAudience)
	_, err = verifier.Verify(context.Background(), token)

	assert.True(t, apperrors.Is(err, apperrors.KindInvalidCredential))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def.ghi", token: "abc.def.ghi", ok: true},
		{header: "Bearer   spaced  ", token: "spaced", ok: true},
		{header: "", ok: false},
		{header: "Bearer ", ok: false},
		{header: "Basic dXNlcjpwYXNz", ok: false},
		{header: "bearer abc", ok: false},
		{header: "abc.def.ghi", ok: false},
	}

	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

type certServer struct {
	server  *httptest.Server
	key     *rsa.PrivateKey
	kid     string
	fetches atomic.Int32
}

func newCertServer(t *testing.T, cacheControl string) *certServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	cs := &certServer{key: key, kid: "kid-1"}
	cs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.fetches.Add(1)
		if cacheControl != "" {
			w.Header().Set("Cache-Control", cacheControl)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			cs.kid:     string(certPEM),
			"kid-junk": "not a certificate",
		})
	}))
	t.Cleanup(cs.server.Close)

	return cs
}

func (cs *certServer) sign(t *testing.T, kid string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(cs.key)
	require.NoError(t, err)
	return signed
}

func TestRemoteKeySet_VerifiesAndCaches(t *testing.T) {
	cs := newCertServer(t, "public, max-age=600, must-revalidate")
	keySet := NewRemoteKeySet(nil, cs.server.URL, time.Hour, nil)
	verifier := NewIdentityVerifier(keySet, testIssuer, testAudience)

	for i := 0; i < 3; i++ {
		subject, err := verifier.Verify(context.Background(), cs.sign(t, cs.kid, validClaims("firebase-uid")))
		require.NoError(t, err)
		assert.Equal(t, "firebase-uid", subject)
	}

	assert.Equal(t, int32(1), cs.fetches.Load())
}

func TestRemoteKeySet_RefetchesAfterExpiry(t *testing.T) {
	cs := newCertServer(t, "max-age=60")
	keySet := NewRemoteKeySet(nil, cs.server.URL, time.Hour, nil)
	clock := time.Now()
	keySet.now = func() time.Time { return clock }
	verifier := NewIdentityVerifier(keySet, testIssuer, testAudience)

	_, err := verifier.Verify(context.Background(), cs.sign(t, cs.kid, validClaims("uid")))
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = verifier.Verify(context.Background(), cs.sign(t, cs.kid, validClaims("uid")))
	require.NoError(t, err)

	assert.Equal(t, int32(2), cs.fetches.Load())
}

func TestRemoteKeySet_UnknownKid(t *testing.T) {
	cs := newCertServer(t, "")
	verifier := NewIdentityVerifier(NewRemoteKeySet(nil, cs.server.URL, time.Hour, nil), testIssuer, testAudience)

	_, err := verifier.Verify(context.Background(), cs.sign(t, "kid-unknown", validClaims("uid")))

	assert.True(t, apperrors.Is(err, apperrors.KindInvalidCredential))
}

func TestRemoteKeySet_ProviderDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	keySet := NewRemoteKeySet(nil, server.URL, time.Hour, nil)
	err := keySet.Refresh(context.Background())

	assert.ErrorContains(t, err, "status 503")
}

func TestParseMaxAge(t *testing.T) {
	ttl, ok := parseMaxAge("public, max-age=19845, must-revalidate, no-transform")
	assert.True(t, ok)
	assert.Equal(t, 19845*time.Second, ttl)

	_, ok = parseMaxAge("no-store")
	assert.False(t, ok)

	_, ok = parseMaxAge("max-age=abc")
	assert.False(t, ok)
}
