package services

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/logger"
)

// KeySet resolves the verification key for a token based on its header.
type KeySet interface {
	// KeyFunc returns the lookup used by the JWT parser. ctx bounds any key fetch.
	KeyFunc(ctx context.Context) jwt.Keyfunc
	// Methods lists the signing algorithms this key set accepts.
	Methods() []string
}

// StaticKeySet verifies HS256 tokens with a shared secret. Intended for local
// development and tests where no identity provider is reachable.
type StaticKeySet struct {
	secret []byte
}

func NewStaticKeySet(secret string) *StaticKeySet {
	return &StaticKeySet{secret: []byte(secret)}
}

func (ks *StaticKeySet) Methods() []string {
	return []string{jwt.SigningMethodHS256.Alg()}
}

func (ks *StaticKeySet) KeyFunc(_ context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if len(ks.secret) == 0 {
			return nil, fmt.Errorf("no signing secret configured")
		}
		return ks.secret, nil
	}
}

// RemoteKeySet verifies RS256 tokens against the x509 certificates an identity
// provider publishes as a JSON object of {kid: PEM}. Certificates are cached
// until the response's max-age (or the configured refresh interval) elapses.
type RemoteKeySet struct {
	client  *resty.Client
	url     string
	refresh time.Duration
	log     *zap.Logger
	now     func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func NewRemoteKeySet(client *resty.Client, certsURL string, refresh time.Duration, log *zap.Logger) *RemoteKeySet {
	if client == nil {
		client = resty.New().SetTimeout(10 * time.Second)
	}
	if refresh <= 0 {
		refresh = time.Hour
	}

	return &RemoteKeySet{
		client:  client,
		url:     certsURL,
		refresh: refresh,
		log:     logger.OrNop(log),
		now:     time.Now,
		keys:    make(map[string]*rsa.PublicKey),
	}
}

func (ks *RemoteKeySet) Methods() []string {
	return []string{jwt.SigningMethodRS256.Alg()}
}

func (ks *RemoteKeySet) KeyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("missing kid in header")
		}

		return ks.lookup(ctx, kid)
	}
}

func (ks *RemoteKeySet) lookup(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	ks.mu.RLock()
	key, exists := ks.keys[kid]
	fresh := ks.now().Before(ks.expires)
	ks.mu.RUnlock()

	if exists && fresh {
		return key, nil
	}
	if !exists && fresh {
		return nil, fmt.Errorf("key not found: %s", kid)
	}

	if err := ks.Refresh(ctx); err != nil {
		return nil, err
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()
	key, exists = ks.keys[kid]
	if !exists {
		return nil, fmt.Errorf("key not found: %s", kid)
	}
	return key, nil
}

// Refresh downloads the current certificate set, replacing the cache.
func (ks *RemoteKeySet) Refresh(ctx context.Context) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	// Another caller may have refreshed while this one waited for the lock.
	if ks.now().Before(ks.expires) {
		return nil
	}

	resp, err := ks.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(ks.url)
	if err != nil {
		return fmt.Errorf("failed to fetch signing keys: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to fetch signing keys: status %d", resp.StatusCode())
	}

	var certs map[string]string
	if err := json.Unmarshal(resp.Body(), &certs); err != nil {
		return fmt.Errorf("failed to decode signing keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemData := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemData))
		if err != nil {
			ks.log.Warn("skipping unparseable signing key", zap.String("kid", kid), zap.Error(err))
			continue
		}
		keys[kid] = key
	}
	if len(keys) == 0 {
		return fmt.Errorf("no usable signing keys at %s", ks.url)
	}

	ttl := ks.refresh
	if maxAge, ok := parseMaxAge(resp.Header().Get("Cache-Control")); ok {
		ttl = maxAge
	}

	ks.keys = keys
	ks.expires = ks.now().Add(ttl)

	ks.log.Debug("signing keys refreshed", zap.Int("count", len(keys)), zap.Duration("ttl", ttl))
	return nil
}

func parseMaxAge(cacheControl string) (time.Duration, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(directive), "=")
		if !found || !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.Atoi(strings.Trim(value, `"`))
		if err != nil || seconds <= 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	return 0, false
}
