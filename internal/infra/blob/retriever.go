package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"avatar_update_bot/internal/domain/profile"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

const (
	getBlobPath    = "/xrpc/com.atproto.sync.getBlob"
	requestTimeout = 5 * time.Second

	// octetStream is mimetype's fallback for bytes it cannot recognize.
	// Classification must never hand a guessed type to the profile record.
	octetStream = "application/octet-stream"
)

// Retriever fetches raw blob bytes from the sync endpoint by owner DID and
// content identifier.
type Retriever struct {
	client *http.Client
	log    *logrus.Logger
}

func NewRetriever(log *logrus.Logger) *Retriever {
	return &Retriever{
		client: &http.Client{Timeout: requestTimeout},
		log:    log,
	}
}

// Fetch downloads the blob identified by cid from the repository owned by did.
func (r *Retriever) Fetch(ctx context.Context, address, did, cid string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?did=%s&cid=%s",
		address, getBlobPath, url.QueryEscape(did), url.QueryEscape(cid))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request for %s: %w", cid, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob fetch for %s failed: %w", cid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("blob fetch for %s returned status %d", cid, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob body for %s: %w", cid, err)
	}
	r.log.Debugf("Fetched blob %s: %d bytes", cid, len(data))
	return data, nil
}

// Classify derives blob metadata from freshly fetched bytes. The media type
// comes from magic-byte sniffing, never from a filename or extension. An empty
// or unrecognizable payload is an error.
func Classify(cid string, data []byte) (profile.BlobMetadata, error) {
	if len(data) == 0 {
		return profile.BlobMetadata{}, fmt.Errorf("blob %s is empty", cid)
	}

	detected := mimetype.Detect(data)
	if detected.Is(octetStream) {
		return profile.BlobMetadata{}, fmt.Errorf("blob %s has unrecognizable content", cid)
	}

	return profile.BlobMetadata{
		CID:       cid,
		MimeType:  detected.String(),
		SizeBytes: uint64(len(data)),
	}, nil
}
