package health

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	healthPath     = "/xrpc/_health"
	requestTimeout = 5 * time.Second
)

// Normalize forces the endpoint address onto secure HTTP: a plain http scheme
// is rewritten and a bare host gets the scheme prefixed. Trailing slashes are
// stripped so paths can be appended uniformly.
func Normalize(address string) string {
	address = strings.TrimRight(address, "/")
	switch {
	case strings.HasPrefix(address, "https://"):
		return address
	case strings.HasPrefix(address, "http://"):
		return "https://" + strings.TrimPrefix(address, "http://")
	default:
		return "https://" + address
	}
}

// Prober health-checks the remote service before any credential-bearing call
// is made against it.
type Prober struct {
	client *http.Client
	log    *logrus.Logger
}

func NewProber(log *logrus.Logger) *Prober {
	return &Prober{
		client: &http.Client{Timeout: requestTimeout},
		log:    log,
	}
}

// IsAlive issues a bounded GET against the service health path. Any transport
// error or non-200 status means the endpoint is not usable this cycle.
func (p *Prober) IsAlive(ctx context.Context, address string) bool {
	url := address + healthPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.log.Errorf("Failed to build health request for %s: %v", url, err)
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Errorf("Health check request to %s failed: %v", url, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.log.Errorf("Health check for %s returned status %d", url, resp.StatusCode)
		return false
	}
	return true
}
