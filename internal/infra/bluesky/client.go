package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"avatar_update_bot/internal/domain/bluesky"
	"avatar_update_bot/internal/domain/profile"

	"github.com/sirupsen/logrus"
)

const (
	createSessionPath = "/xrpc/com.atproto.server.createSession"
	getRecordPath     = "/xrpc/com.atproto.repo.getRecord"
	putRecordPath     = "/xrpc/com.atproto.repo.putRecord"

	profileCollection = "app.bsky.actor.profile"
	profileRKey       = "self"

	requestTimeout = 5 * time.Second
)

// XRPCClient implements the bluesky.Client interface over the XRPC HTTP
// surface of a PDS.
type XRPCClient struct {
	address string
	client  *http.Client
	log     *logrus.Logger

	accessToken string
}

func NewXRPCClient(address string, log *logrus.Logger) *XRPCClient {
	return &XRPCClient{
		address: address,
		client:  &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// xrpcError is the standard XRPC error envelope.
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Login establishes a session and remembers the access token for subsequent
// writes.
func (c *XRPCClient) Login(ctx context.Context, handle, password string) (*bluesky.Session, error) {
	body, err := json.Marshal(map[string]string{
		"identifier": handle,
		"password":   password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	status, respBody, err := c.post(ctx, c.address+createSessionPath, body, "")
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if status != http.StatusOK {
		xe := decodeXRPCError(respBody)
		return nil, fmt.Errorf("%w: %s (status %d)", bluesky.ErrAuthFailed, xe.Error, status)
	}

	var session struct {
		AccessJwt string `json:"accessJwt"`
		DID       string `json:"did"`
		Handle    string `json:"handle"`
	}
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if session.AccessJwt == "" || session.DID == "" {
		return nil, fmt.Errorf("%w: login response missing token or DID", bluesky.ErrAuthFailed)
	}

	c.accessToken = session.AccessJwt
	return &bluesky.Session{
		DID:         session.DID,
		Handle:      session.Handle,
		AccessToken: session.AccessJwt,
	}, nil
}

// ReadProfile fetches the current profile record and the version CID the
// subsequent write must be conditioned on.
func (c *XRPCClient) ReadProfile(ctx context.Context, repoDID string) (*profile.Record, string, error) {
	reqURL := fmt.Sprintf("%s%s?repo=%s&collection=%s&rkey=%s",
		c.address, getRecordPath, url.QueryEscape(repoDID), profileCollection, profileRKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build getRecord request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("getRecord request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read getRecord response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		xe := decodeXRPCError(respBody)
		if resp.StatusCode == http.StatusNotFound || xe.Error == "RecordNotFound" {
			return nil, "", bluesky.ErrRecordNotFound
		}
		return nil, "", fmt.Errorf("getRecord returned status %d: %s", resp.StatusCode, xe.Error)
	}

	var out struct {
		URI   string          `json:"uri"`
		CID   string          `json:"cid"`
		Value *profile.Record `json:"value"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, "", fmt.Errorf("failed to decode profile record: %w", err)
	}
	if out.Value == nil {
		return nil, "", bluesky.ErrRecordNotFound
	}
	return out.Value, out.CID, nil
}

// WriteProfile puts the record, conditioned on swapCID matching the remote
// head. An empty swapCID omits the precondition (first-ever write).
func (c *XRPCClient) WriteProfile(ctx context.Context, repoDID string, rec *profile.Record, swapCID string) error {
	payload := map[string]interface{}{
		"repo":       repoDID,
		"collection": profileCollection,
		"rkey":       profileRKey,
		"record":     rec,
	}
	if swapCID != "" {
		payload["swapRecord"] = swapCID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode putRecord request: %w", err)
	}

	status, respBody, err := c.post(ctx, c.address+putRecordPath, body, c.accessToken)
	if err != nil {
		return fmt.Errorf("putRecord request failed: %w", err)
	}
	if status == http.StatusOK {
		return nil
	}

	xe := decodeXRPCError(respBody)
	if status == http.StatusConflict || xe.Error == "InvalidSwap" {
		return fmt.Errorf("%w: %s", bluesky.ErrWriteConflict, xe.Message)
	}
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", bluesky.ErrAuthFailed, xe.Error)
	}
	return fmt.Errorf("putRecord returned status %d: %s", status, xe.Error)
}

func (c *XRPCClient) post(ctx context.Context, reqURL string, body []byte, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func decodeXRPCError(body []byte) xrpcError {
	var xe xrpcError
	if err := json.Unmarshal(body, &xe); err != nil || xe.Error == "" {
		xe.Error = "UnknownError"
	}
	return xe
}
