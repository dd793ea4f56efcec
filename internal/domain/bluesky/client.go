package bluesky

import (
	"context"
	"errors"

	"avatar_update_bot/internal/domain/profile"
)

// Session holds the identity established by a successful login.
type Session struct {
	DID         string
	Handle      string
	AccessToken string
}

// Sentinel errors the pipeline branches on. Everything else coming out of the
// client is treated as a generic transport failure.
var (
	// ErrRecordNotFound means the profile record does not exist yet.
	ErrRecordNotFound = errors.New("profile record not found")
	// ErrWriteConflict means the compare-and-swap precondition failed: the
	// record changed between read and write.
	ErrWriteConflict = errors.New("profile record changed since read")
	// ErrAuthFailed means the service rejected the credentials.
	ErrAuthFailed = errors.New("authentication failed")
)

// Client defines the narrow session surface the pipeline consumes. This keeps
// the orchestrator decoupled from the XRPC wire protocol.
type Client interface {
	Login(ctx context.Context, handle, password string) (*Session, error)

	// ReadProfile returns the current profile record and its version CID.
	// Returns ErrRecordNotFound when the record has never been created.
	ReadProfile(ctx context.Context, repoDID string) (*profile.Record, string, error)

	// WriteProfile writes the record conditioned on swapCID matching the
	// remote state. An empty swapCID performs an unconditional create.
	// Returns ErrWriteConflict when the precondition fails.
	WriteProfile(ctx context.Context, repoDID string, rec *profile.Record, swapCID string) error
}
