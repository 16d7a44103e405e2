package transfer

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/tanq16/paraget/internal/utils"
)

// FetchFull streams the whole resource straight into dest. expected is the
// probed length, or -1 to accept any length.
func FetchFull(ctx context.Context, tc *TransferContext, dest string, expected int64) (int64, error) {
	log := utils.GetLogger("full")
	const op = "fetch resource"
	req, err := tc.newRequest(ctx, http.MethodGet)
	if err != nil {
		return 0, newError(KindTransport, op, -1, fmt.Errorf("error creating GET request: %w", err))
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return 0, newError(KindTransport, op, -1, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, statusError(op, -1, resp.StatusCode)
	}

	outFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, newError(KindIO, op, -1, fmt.Errorf("error creating output file: %w", err))
	}
	written, err := streamCopy(outFile, resp.Body, expected, tc.progress, op, -1)
	if err == nil {
		if syncErr := outFile.Sync(); syncErr != nil {
			err = newError(KindIO, op, -1, syncErr)
		}
	}
	if closeErr := outFile.Close(); err == nil && closeErr != nil {
		err = newError(KindIO, op, -1, closeErr)
	}
	if err != nil {
		return written, err
	}
	log.Debug().Int64("bytes", written).Str("output", dest).Msg("Simple download completed")
	return written, nil
}
