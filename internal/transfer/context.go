package transfer

import (
	"context"
	"net/http"
)

//go:generate mockgen -destination=mocks/doer.go -package=mocks . Doer

// Doer is the HTTP capability the transfer needs. Implementations must be
// safe for concurrent use.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Reporter receives byte counts as they are written. Add is called from
// several goroutines at once.
type Reporter interface {
	Add(n int64)
}

type noopReporter struct{}

func (noopReporter) Add(int64) {}

// TransferContext is shared read-only by every fetcher of one download.
type TransferContext struct {
	client    Doer
	url       string
	userAgent string
	progress  Reporter
}

func NewTransferContext(client Doer, url, userAgent string, progress Reporter) *TransferContext {
	if progress == nil {
		progress = noopReporter{}
	}
	return &TransferContext{
		client:    client,
		url:       url,
		userAgent: userAgent,
		progress:  progress,
	}
}

func (tc *TransferContext) URL() string {
	return tc.url
}

func (tc *TransferContext) newRequest(ctx context.Context, method string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, tc.url, http.NoBody)
	if err != nil {
		return nil, err
	}
	if tc.userAgent != "" {
		req.Header.Set("User-Agent", tc.userAgent)
	}
	return req, nil
}
