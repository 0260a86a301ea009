// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/strixun/edge-core/internal/crypto"
	"github.com/strixun/edge-core/internal/logger"
	"github.com/strixun/edge-core/internal/store"
	"github.com/strixun/edge-core/models"
)

// DataRequestTTL is how long a filed request stays actionable. Expiry is
// lazy: a touched request past its deadline transitions to expired.
const DataRequestTTL = 24 * time.Hour

// Data types a request may name. Only the private email is disclosable
// today.
const DataTypeEmail = "email"

// Entity coordinates and custody keys of the data-request flow. The raw
// grant key and the sealed payload stay server-side under their own keys;
// the request entity never carries either in plaintext.
const (
	dataRequestService = "auth"
	dataRequestEntity  = "datarequest"
	dataRequestForRel  = "datarequests-for"
)

func requestKeyCustody(requestID string) string { return "auth:requestkey:" + requestID }
func sealedPayloadKey(requestID string) string  { return "auth:datapayload:" + requestID }

type dataRequests struct {
	entities *store.EntityStore
	kv       store.KVStore
	logger   *logger.Logger

	now func() time.Time
}

// NewDataRequestService wires the default data-request implementation.
func NewDataRequestService(entities *store.EntityStore, log *logger.Logger) DataRequestService {
	return &dataRequests{
		entities: entities,
		kv:       entities.KV(),
		logger:   log,
		now:      time.Now,
	}
}

func (s *dataRequests) Create(ctx context.Context, requesterID, targetCustomerID, dataType string) (models.DataRequest, error) {
	if dataType != DataTypeEmail {
		return models.DataRequest{}, fmt.Errorf("unsupported data type %q", dataType)
	}

	var target models.Customer
	found, err := s.entities.GetEntity(ctx, customerService, customerEntity, targetCustomerID, &target)
	if err != nil {
		return models.DataRequest{}, err
	}
	if !found {
		return models.DataRequest{}, fmt.Errorf("%w: customer %s", store.ErrEntityNotFound, targetCustomerID)
	}

	now := s.now().UTC()
	request := models.DataRequest{
		RequestID:        "dreq_" + uuid.NewString(),
		RequesterID:      requesterID,
		TargetCustomerID: targetCustomerID,
		DataType:         dataType,
		Status:           models.DataRequestPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(DataRequestTTL),
	}

	if err := s.entities.PutEntity(ctx, dataRequestService, dataRequestEntity, request.RequestID, request); err != nil {
		return models.DataRequest{}, err
	}
	if err := s.entities.IndexAdd(ctx, dataRequestService, dataRequestForRel, targetCustomerID, request.RequestID); err != nil {
		return models.DataRequest{}, err
	}

	s.logger.Info().
		Str("requestId", request.RequestID).
		Str("target", targetCustomerID).
		Msg("data request filed")

	return request, nil
}

func (s *dataRequests) Approve(ctx context.Context, requestID, callerID, ownerToken string) (models.DataRequest, error) {
	request, err := s.loadPending(ctx, requestID)
	if err != nil {
		return models.DataRequest{}, err
	}
	if request.TargetCustomerID != callerID {
		return models.DataRequest{}, ErrNotRequestTarget
	}

	var target models.Customer
	found, err := s.entities.GetEntity(ctx, customerService, customerEntity, request.TargetCustomerID, &target)
	if err != nil {
		return models.DataRequest{}, err
	}
	if !found {
		return models.DataRequest{}, fmt.Errorf("%w: customer %s", store.ErrEntityNotFound, request.TargetCustomerID)
	}

	keyBytes, err := crypto.RandomBytes(32)
	if err != nil {
		return models.DataRequest{}, err
	}
	grantKey := crypto.B64URLEncode(keyBytes)

	payload, err := json.Marshal(map[string]string{"email": target.Email})
	if err != nil {
		return models.DataRequest{}, err
	}

	// The sealed payload needs both the grant key and the owner's token
	// to open; neither party alone can reach the plaintext.
	sealed, err := crypto.EncryptTwoStage(ownerToken, grantKey, payload)
	if err != nil {
		return models.DataRequest{}, err
	}

	ttl := request.ExpiresAt.Sub(s.now().UTC())
	if err := s.kv.Put(ctx, sealedPayloadKey(requestID), sealed, store.PutOptions{TTL: ttl}); err != nil {
		return models.DataRequest{}, err
	}
	if err := s.kv.Put(ctx, requestKeyCustody(requestID), []byte(grantKey), store.PutOptions{TTL: ttl}); err != nil {
		return models.DataRequest{}, err
	}

	request.Status = models.DataRequestApproved
	if err := s.entities.PutEntity(ctx, dataRequestService, dataRequestEntity, requestID, request); err != nil {
		return models.DataRequest{}, err
	}

	s.logger.Info().Str("requestId", requestID).Msg("data request approved")
	return request, nil
}

func (s *dataRequests) Reject(ctx context.Context, requestID, callerID string) (models.DataRequest, error) {
	request, err := s.loadPending(ctx, requestID)
	if err != nil {
		return models.DataRequest{}, err
	}
	if request.TargetCustomerID != callerID {
		return models.DataRequest{}, ErrNotRequestTarget
	}

	request.Status = models.DataRequestRejected
	if err := s.entities.PutEntity(ctx, dataRequestService, dataRequestEntity, requestID, request); err != nil {
		return models.DataRequest{}, err
	}

	s.logger.Info().Str("requestId", requestID).Msg("data request rejected")
	return request, nil
}

func (s *dataRequests) Collect(ctx context.Context, requestID, callerID, callerToken string) (models.DataRequest, string, error) {
	request, err := s.load(ctx, requestID)
	if err != nil {
		return models.DataRequest{}, "", err
	}
	if request.Status != models.DataRequestApproved {
		return models.DataRequest{}, "", ErrDataRequestNotPending
	}
	if request.RequesterID != callerID {
		return models.DataRequest{}, "", ErrNotRequestOwner
	}

	rawKey, found, err := s.kv.Get(ctx, requestKeyCustody(requestID))
	if err != nil {
		return models.DataRequest{}, "", err
	}
	if !found {
		return models.DataRequest{}, "", ErrDataRequestNotFound
	}

	sealed, found, err := s.kv.Get(ctx, sealedPayloadKey(requestID))
	if err != nil {
		return models.DataRequest{}, "", err
	}
	if !found {
		return models.DataRequest{}, "", ErrDataRequestNotFound
	}

	// The grant key only ever leaves custody sealed to the collector's
	// own token.
	keyEnvelope, err := crypto.EncryptEnvelope(callerToken, rawKey)
	if err != nil {
		return models.DataRequest{}, "", err
	}
	request.RequestKey = crypto.B64URLEncode(keyEnvelope)

	return request, crypto.B64URLEncode(sealed), nil
}

func (s *dataRequests) ListForTarget(ctx context.Context, targetCustomerID string) ([]models.DataRequest, error) {
	ids, err := s.entities.IndexGet(ctx, dataRequestService, dataRequestForRel, targetCustomerID)
	if err != nil {
		return nil, err
	}

	raws, err := s.entities.GetExistingEntities(ctx, dataRequestService, dataRequestEntity, ids)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	requests := make([]models.DataRequest, 0, len(raws))
	for _, raw := range raws {
		var request models.DataRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("decode data request: %w", err)
		}
		if request.Status == models.DataRequestPending && request.Expired(now) {
			request.Status = models.DataRequestExpired
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// load reads a request, lazily transitioning a stale pending one to
// expired.
func (s *dataRequests) load(ctx context.Context, requestID string) (models.DataRequest, error) {
	var request models.DataRequest
	found, err := s.entities.GetEntity(ctx, dataRequestService, dataRequestEntity, requestID, &request)
	if err != nil {
		return models.DataRequest{}, err
	}
	if !found {
		return models.DataRequest{}, ErrDataRequestNotFound
	}

	if request.Status == models.DataRequestPending && request.Expired(s.now().UTC()) {
		request.Status = models.DataRequestExpired
		if err := s.entities.PutEntity(ctx, dataRequestService, dataRequestEntity, requestID, request); err != nil {
			return models.DataRequest{}, err
		}
	}
	return request, nil
}

func (s *dataRequests) loadPending(ctx context.Context, requestID string) (models.DataRequest, error) {
	request, err := s.load(ctx, requestID)
	if err != nil {
		return models.DataRequest{}, err
	}
	if request.Status != models.DataRequestPending {
		return models.DataRequest{}, ErrDataRequestNotPending
	}
	return request, nil
}
