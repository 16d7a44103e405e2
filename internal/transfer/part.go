package transfer

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/tanq16/paraget/internal/utils"
)

// PartResult points at the temporary file holding one fetched range.
type PartResult struct {
	Index int
	Path  string
}

// FetchPart downloads one range into its own hidden sibling of dest. The
// server must answer 206; a 200 means the range was ignored and the body
// cannot be used.
func FetchPart(ctx context.Context, tc *TransferContext, spec RangeSpec, dest string) (PartResult, error) {
	log := utils.GetLogger("part").With().Int("chunkId", spec.Index).Logger()
	const op = "fetch part"
	req, err := tc.newRequest(ctx, http.MethodGet)
	if err != nil {
		return PartResult{}, newError(KindTransport, op, spec.Index, fmt.Errorf("error creating GET request: %w", err))
	}
	rangeHeader := spec.Header()
	req.Header.Set("Range", rangeHeader)
	log.Debug().Str("range", rangeHeader).Msg("Sending range request")
	resp, err := tc.client.Do(req)
	if err != nil {
		return PartResult{}, newError(KindTransport, op, spec.Index, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return PartResult{}, statusError(op, spec.Index, resp.StatusCode)
	}

	tempFileName := utils.PartPath(dest, spec.Index)
	tempFile, err := os.OpenFile(tempFileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return PartResult{}, newError(KindIO, op, spec.Index, fmt.Errorf("error opening temp file: %w", err))
	}
	written, err := streamCopy(tempFile, resp.Body, int64(spec.Len()), tc.progress, op, spec.Index)
	if err == nil {
		if syncErr := tempFile.Sync(); syncErr != nil {
			err = newError(KindIO, op, spec.Index, syncErr)
		}
	}
	if closeErr := tempFile.Close(); err == nil && closeErr != nil {
		err = newError(KindIO, op, spec.Index, closeErr)
	}
	if err != nil {
		os.Remove(tempFileName)
		return PartResult{}, err
	}
	log.Debug().Int64("bytes", written).Str("file", tempFileName).Msg("Chunk download completed")
	return PartResult{Index: spec.Index, Path: tempFileName}, nil
}
