// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

// Package client implements the outbound API client of the fleet: a typed
// resty-based executor with opt-in dedup, priority queueing, circuit
// breaking, retry, offline replay, caching, optimistic updates and
// per-request cancellation, plus transparent decryption of token-bound
// response envelopes and integrity verification of service responses.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/strixun/edge-core/internal/crypto"
	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/logger"
)

// Features are the opt-in executor behaviours, applied in a fixed order:
// dedup, queue, breaker, retry. Offline capture and the cache sit in
// front of the whole pipeline.
type Features struct {
	Deduplication     bool
	Queue             bool
	CircuitBreaker    bool
	Retry             bool
	OfflineQueue      bool
	Cache             bool
	OptimisticUpdates bool
}

// Config configures one APIClient.
type Config struct {
	// ServiceName is the fleet service this client talks to.
	ServiceName string

	// Environment drives URL resolution; local-dev values force localhost.
	Environment string

	// BaseURL is the env-var override consulted outside local dev.
	BaseURL string

	// Port is the localhost port for local-dev resolution.
	Port int

	// Token is the customer JWT sent as a bearer and used to open
	// encrypted response envelopes.
	Token string

	// ServiceKey marks calls as service-originated.
	ServiceKey string

	// IntegrityKeyphrase, when set, signs outbound requests and verifies
	// response signatures.
	IntegrityKeyphrase string

	RequestTimeout time.Duration
	MaxConcurrent  int

	BreakerFailureThreshold int
	BreakerResetInterval    time.Duration

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	CacheTTL time.Duration

	// ThrowOnIntegrityFailure controls whether a bad or missing response
	// signature fails the call. Defaults to true; nil means unset.
	ThrowOnIntegrityFailure *bool

	Features Features
}

// Request is one outbound call.
type Request struct {
	// ID addresses the request for cancellation. Assigned when empty.
	ID string

	Method string
	Path   string
	Query  url.Values
	Body   any

	// Priority orders queue admission; higher runs first.
	Priority int

	// CustomerID binds the integrity signature on service calls.
	CustomerID string

	// CacheStrategy selects swr (default) or network-only for GETs;
	// CacheTags label the entry for invalidation and, on mutations,
	// name the entries to invalidate.
	CacheStrategy string
	CacheTags     []string
}

// Response is the decoded result: the body is already decrypted and
// integrity-checked.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	FromCache bool
}

// Decode unmarshals the response body into target.
func (r *Response) Decode(target any) error {
	return json.Unmarshal(r.Body, target)
}

// APIClient is the feature-composed outbound executor. Safe for
// concurrent use.
type APIClient struct {
	http   *resty.Client
	cfg    Config
	signer *integrity.Signer
	logger *logger.Logger

	mu    sync.RWMutex
	token string

	dedup   *dedupGroup
	queue   *requestQueue
	breaker *circuitBreaker
	cache   *responseCache
	offline *offlineQueue
	cancels *cancelRegistry

	online                  atomic.Bool
	throwOnIntegrityFailure bool
}

// New constructs an APIClient for one fleet service.
func New(cfg Config, log *logger.Logger) *APIClient {
	baseURL := ResolveServiceURL(cfg.ServiceName, cfg.Environment, cfg.BaseURL, cfg.Port)

	httpc := resty.New().SetBaseURL(baseURL)
	if cfg.RequestTimeout > 0 {
		httpc.SetTimeout(cfg.RequestTimeout)
	}

	var signer *integrity.Signer
	if cfg.IntegrityKeyphrase != "" {
		signer = integrity.NewSigner(cfg.IntegrityKeyphrase)
	}

	throw := true
	if cfg.ThrowOnIntegrityFailure != nil {
		throw = *cfg.ThrowOnIntegrityFailure
	}

	c := &APIClient{
		http:                    httpc,
		cfg:                     cfg,
		signer:                  signer,
		logger:                  log,
		token:                   cfg.Token,
		dedup:                   newDedupGroup(),
		queue:                   newRequestQueue(cfg.MaxConcurrent),
		breaker:                 newCircuitBreaker(cfg.BreakerFailureThreshold, cfg.BreakerResetInterval),
		cache:                   newResponseCache(cfg.CacheTTL),
		offline:                 newOfflineQueue(),
		cancels:                 newCancelRegistry(),
		throwOnIntegrityFailure: throw,
	}
	c.online.Store(true)
	return c
}

// SetToken replaces the bearer token after a login or refresh.
func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *APIClient) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetOnline flips the connectivity state. Coming back online replays the
// offline backlog FIFO.
func (c *APIClient) SetOnline(ctx context.Context, online bool) error {
	wasOnline := c.online.Swap(online)
	if online && !wasOnline && c.cfg.Features.OfflineQueue {
		return c.offline.replay(ctx, func(ctx context.Context, req Request) (*Response, error) {
			return c.fetch(ctx, req, Fingerprint(req))
		})
	}
	return nil
}

// Cancel aborts one request wherever it currently lives: the offline
// backlog, the queue, or an in-flight fetch.
func (c *APIClient) Cancel(id string) bool {
	if c.offline.remove(id) {
		return true
	}
	return c.cancels.cancel(id)
}

// CancelAll aborts every live request.
func (c *APIClient) CancelAll() {
	c.cancels.cancelAll()
}

// InvalidateCache drops every cached response carrying any of the tags.
func (c *APIClient) InvalidateCache(tags ...string) {
	c.cache.invalidateTags(tags)
}

// Do runs one request through the feature pipeline.
func (c *APIClient) Do(ctx context.Context, req Request) (*Response, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	if c.cfg.Features.OfflineQueue && !c.online.Load() {
		if err := c.offline.enqueue(req); err != nil {
			return nil, err
		}
		return nil, ErrOfflineQueued
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancels.register(req.ID, cancel)
	defer func() {
		c.cancels.drop(req.ID)
		cancel()
	}()

	fp := Fingerprint(req)

	if c.cacheable(req) {
		if resp, fresh, ok := c.cache.get(fp); ok {
			cached := *resp
			cached.FromCache = true
			if !fresh {
				go c.revalidate(req, fp)
			}
			return &cached, nil
		}
	}

	resp, err := c.fetch(ctx, req, fp)
	if err != nil {
		return nil, err
	}

	if c.cacheable(req) && resp.Status >= 200 && resp.Status < 300 {
		c.cache.set(fp, resp, req.CacheTags)
	}
	if c.cfg.Features.Cache && req.Method != http.MethodGet {
		c.cache.invalidateTags(req.CacheTags)
	}

	return resp, nil
}

func (c *APIClient) cacheable(req Request) bool {
	return c.cfg.Features.Cache &&
		req.Method == http.MethodGet &&
		req.CacheStrategy != CacheNetworkOnly
}

// revalidate refreshes a stale cache entry in the background.
func (c *APIClient) revalidate(req Request, fp string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.http.GetClient().Timeout+time.Second)
	defer cancel()

	resp, err := c.fetch(ctx, req, fp)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", req.Path).Msg("cache revalidation failed")
		return
	}
	if resp.Status >= 200 && resp.Status < 300 {
		c.cache.set(fp, resp, req.CacheTags)
	}
}

// fetch applies dedup, then the execute pipeline.
func (c *APIClient) fetch(ctx context.Context, req Request, fp string) (*Response, error) {
	if c.cfg.Features.Deduplication && req.Method == http.MethodGet {
		return c.dedup.do(ctx, fp, func(fetchCtx context.Context) (*Response, error) {
			return c.execute(fetchCtx, req)
		})
	}
	return c.execute(ctx, req)
}

// execute applies queue admission, the breaker and retry around one send.
func (c *APIClient) execute(ctx context.Context, req Request) (*Response, error) {
	if c.cfg.Features.Queue {
		if err := c.queue.acquire(ctx, req.Priority); err != nil {
			return nil, err
		}
		defer c.queue.release()
	}

	if c.cfg.Features.CircuitBreaker {
		if err := c.breaker.allow(); err != nil {
			return nil, err
		}
	}

	resp, err := c.sendWithRetry(ctx, req)

	if c.cfg.Features.CircuitBreaker {
		if err != nil || resp.Status >= http.StatusInternalServerError {
			c.breaker.failure()
		} else {
			c.breaker.success()
		}
	}

	return resp, err
}

// send performs one wire round-trip: marshal, auth headers, integrity
// signature, then decode (verify + decrypt) of the response.
func (c *APIClient) send(ctx context.Context, req Request) (*Response, error) {
	r := c.http.R().SetContext(ctx)

	var bodyBytes []byte
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyBytes = raw
		r.SetHeader("Content-Type", "application/json").SetBody(raw)
	}

	pathWithQuery := req.Path
	if len(req.Query) > 0 {
		pathWithQuery += "?" + req.Query.Encode()
	}

	if token := c.bearerToken(); token != "" {
		r.SetAuthToken(token)
	}
	if c.cfg.ServiceKey != "" {
		r.SetHeader(integrity.HeaderServiceKey, c.cfg.ServiceKey)
		r.SetHeader(integrity.HeaderServiceRequest, "true")
	}

	if c.signer != nil {
		ts := integrity.Timestamp(time.Now())
		customerID := req.CustomerID
		r.SetHeader(integrity.HeaderRequestTimestamp, ts)
		r.SetHeader(integrity.HeaderRequestIntegrity, c.signer.SignRequest(req.Method, pathWithQuery, bodyBytes, ts, customerID))
		if customerID != "" {
			r.SetHeader(integrity.HeaderCustomerID, customerID)
		}
	}

	resp, err := r.Execute(req.Method, pathWithQuery)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	return c.decodeResponse(resp)
}

// decodeResponse verifies the response signature (service mode) and opens
// the token-bound envelope when the body is encrypted. Verification runs
// over the wire bytes, before decryption.
func (c *APIClient) decodeResponse(resp *resty.Response) (*Response, error) {
	body := resp.Body()

	if c.signer != nil && c.throwOnIntegrityFailure {
		sig := resp.Header().Get(integrity.HeaderResponseIntegrity)
		if err := c.signer.VerifyResponse(resp.StatusCode(), body, sig); err != nil {
			return nil, fmt.Errorf("response integrity: %w", err)
		}
	}

	if resp.Header().Get("X-Encrypted") == "true" {
		token := c.bearerToken()
		plaintext, err := crypto.DecryptEnvelope(token, body)
		if err != nil {
			return nil, err
		}
		body = plaintext
	}

	return &Response{
		Status: resp.StatusCode(),
		Header: resp.Header(),
		Body:   body,
	}, nil
}
