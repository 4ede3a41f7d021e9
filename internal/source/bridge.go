package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ming-qiu/theia/internal/errors"
)

const bridgeTimeout = 60 * time.Second

// BridgeAdapter fetches timeline snapshots from a host bridge over HTTP.
// The bridge is a small sidecar running inside the editing application's
// scripting environment; it exposes GET /api/timelines/{name} (and
// /api/timelines/current) returning the Timeline JSON payload.
type BridgeAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewBridgeAdapter creates an adapter against a bridge base URL, e.g.
// "http://127.0.0.1:8799".
func NewBridgeAdapter(baseURL string) *BridgeAdapter {
	return &BridgeAdapter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: bridgeTimeout,
		},
	}
}

// Timeline fetches the named timeline snapshot from the bridge.
func (a *BridgeAdapter) Timeline(ctx context.Context, name string) (*Timeline, error) {
	endpoint := a.baseURL + "/api/timelines/current"
	if name != "" {
		endpoint = a.baseURL + "/api/timelines/" + url.PathEscape(name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewSnapshotError("building bridge request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewSnapshotError("querying host bridge", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewTimelineNotFoundError(name)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.NewSnapshotError(
			fmt.Sprintf("host bridge returned HTTP %d: %s", resp.StatusCode, string(body)), nil)
	}

	var tl Timeline
	if err := json.NewDecoder(resp.Body).Decode(&tl); err != nil {
		return nil, errors.NewSnapshotError("decoding bridge response", err)
	}
	return &tl, nil
}
