package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
	"github.com/valkey-io/valkey-go"
)

// ValkeyClient caches finished analyses and remembers which requests were
// already answered. The underlying client may be replaced after a connection
// error, so every access goes through current.
type ValkeyClient struct {
	client   valkey.Client
	settings config.StoreSettings
	dial     func(context.Context, config.StoreSettings) (valkey.Client, error)
	mu       sync.RWMutex
}

func NewValkeyClient(ctx context.Context, store config.StoreSettings) (*ValkeyClient, error) {
	client, err := connectValkey(ctx, store)
	if err != nil {
		return nil, err
	}
	return &ValkeyClient{client: client, settings: store, dial: connectValkey}, nil
}

func (vc *ValkeyClient) current() valkey.Client {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.client
}

func connectValkey(ctx context.Context, store config.StoreSettings) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			store.ValkeyAddress,
		},
		Password:         store.ValkeyPassword,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if store.ValkeyTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", store.ValkeyAddress))
	return client, nil
}

func (vc *ValkeyClient) recreateClient(ctx context.Context) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := vc.dial(ctx, vc.settings)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.client.Close()
	vc.client = client
}

func (vc *ValkeyClient) Close() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.client.Close()
}

// MarkProcessed records that requestID has been answered. The set expires a
// day after its last write.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, requestID string) error {
	b := vc.current().B()
	completed := []valkey.Completed{
		b.Sadd().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(),
		b.Expire().Key(VALKEY_PROCESSED_KEY).Seconds(int64(VALKEY_PROCESSED_TTL.Seconds())).Build(),
	}

	responses := vc.DoMultiWithRetry(ctx, completed, VALKEY_RETRIES)
	for _, res := range responses {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyClient] failed to mark request processed: %w", err)
		}
	}

	slog.Debug("[ValkeyClient] Marked request processed", slog.String("request_id", requestID))
	return nil
}

// IsProcessed reports whether requestID was already answered. Lookup errors
// count as not processed so the request is retried rather than dropped.
func (vc *ValkeyClient) IsProcessed(ctx context.Context, requestID string) bool {
	res := vc.DoWithRetry(ctx, vc.current().B().Sismember().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(), VALKEY_RETRIES)

	ok, err := res.AsBool()
	if err != nil {
		return false
	}
	return ok
}

// CacheResult stores the encoded result of an analysis under its id. A zero
// CacheTTL keeps it until evicted.
func (vc *ValkeyClient) CacheResult(ctx context.Context, analysisID string, payload []byte) error {
	set := vc.current().B().Set().Key(ResultKey(analysisID)).Value(valkey.BinaryString(payload))

	var cmd valkey.Completed
	if ttl := int64(vc.settings.CacheTTL.Seconds()); ttl > 0 {
		cmd = set.ExSeconds(ttl).Build()
	} else {
		cmd = set.Build()
	}

	if err := vc.DoWithRetry(ctx, cmd, VALKEY_RETRIES).Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] failed to cache analysis %s: %w", analysisID, err)
	}
	return nil
}

// CachedResult returns the cached payload for analysisID. A miss returns
// ok == false and no error.
func (vc *ValkeyClient) CachedResult(ctx context.Context, analysisID string) ([]byte, bool, error) {
	res := vc.DoWithRetry(ctx, vc.current().B().Get().Key(ResultKey(analysisID)).Build(), VALKEY_RETRIES)

	payload, err := res.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("[ValkeyClient] failed to read analysis %s: %w", analysisID, err)
	}
	return payload, true, nil
}

func ResultKey(analysisID string) string {
	return VALKEY_RESULT_KEY_PREFIX + analysisID
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.current().DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient(ctx)
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(VALKEY_RETRY_DELAY)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.current().Do(ctx, completed)
		err := result.Error()
		if err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vc.recreateClient(ctx)
		}

		time.Sleep(VALKEY_RETRY_DELAY)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
