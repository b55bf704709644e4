package geocoding

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"homechef-delivery/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedProvider memoizes a Provider in Redis so re-opening checkout with the
// same address does not geocode again. Cache failures never fail a lookup.
type CachedProvider struct {
	next   Provider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedProvider(next Provider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{next: next, client: client, ttl: ttl, logger: logger}
}

type addressEntry struct {
	Result        models.GeocodeResult `json:"result"`
	LowConfidence bool                 `json:"lowConfidence"`
}

func addressKey(q models.AddressQuery) string {
	line := strings.ToLower(q.Normalized().Line())
	sum := sha1.Sum([]byte(line))
	return "geocode:addr:" + hex.EncodeToString(sum[:])
}

func pincodeKey(pincode string) string {
	return "geocode:pin:" + pincode
}

func (p *CachedProvider) GeocodeAddress(ctx context.Context, q models.AddressQuery) (*models.GeocodeResult, error) {
	key := addressKey(q)

	var entry addressEntry
	if p.get(ctx, key, &entry) {
		res := entry.Result
		res.LowConfidence = entry.LowConfidence
		res.Source = models.SourceCache
		return &res, nil
	}

	res, err := p.next.GeocodeAddress(ctx, q)
	if err != nil {
		return nil, err
	}
	p.set(ctx, key, addressEntry{Result: *res, LowConfidence: res.LowConfidence})
	return res, nil
}

func (p *CachedProvider) LookupPincode(ctx context.Context, pincode string) (*models.PincodeResult, error) {
	key := pincodeKey(pincode)

	var res models.PincodeResult
	if p.get(ctx, key, &res) {
		res.Source = models.SourceCache
		return &res, nil
	}

	fresh, err := p.next.LookupPincode(ctx, pincode)
	if err != nil {
		return nil, err
	}
	p.set(ctx, key, fresh)
	return fresh, nil
}

func (p *CachedProvider) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		p.logger.Warn("geocode cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (p *CachedProvider) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
		p.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
}
