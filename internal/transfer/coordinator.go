package transfer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tanq16/paraget/internal/utils"
)

type State int

const (
	StatePending State = iota
	StateProbing
	StatePlanning
	StateFetching
	StateAssembling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProbing:
		return "probing"
	case StatePlanning:
		return "planning"
	case StateFetching:
		return "fetching"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Options struct {
	// Parts is the requested number of ranges. 1 forces a single stream.
	Parts int
	// Concurrency caps in-flight range requests; 0 means one per part up to
	// utils.MaxConnections.
	Concurrency int
	// OnStateChange, if set, is called after every transition.
	OnStateChange func(State)
}

// Coordinator runs one download: probe, plan, fetch the parts concurrently,
// then assemble them. It is not reusable.
type Coordinator struct {
	tc   *TransferContext
	dest string
	opts Options
	id   string
	log  zerolog.Logger

	mu    sync.RWMutex
	state State
	info  ResourceInfo
}

func NewCoordinator(tc *TransferContext, dest string, opts Options) *Coordinator {
	id := uuid.NewString()
	return &Coordinator{
		tc:   tc,
		dest: dest,
		opts: opts,
		id:   id,
		log:  utils.GetLogger("coordinator").With().Str("downloadId", id).Logger(),
	}
}

func (c *Coordinator) ID() string {
	return c.id
}

func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Info is the probed resource metadata; zero until probing succeeds.
func (c *Coordinator) Info() ResourceInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

func (c *Coordinator) Run(ctx context.Context) error {
	if c.opts.Parts <= 0 {
		c.setState(StatePlanning)
		return c.fail(newError(KindInvalidPlan, "plan ranges", -1, fmt.Errorf("part count must be positive, got %d", c.opts.Parts)))
	}

	c.setState(StateProbing)
	info, err := Probe(ctx, c.tc)
	if err != nil {
		return c.fail(err)
	}
	c.mu.Lock()
	c.info = info
	c.mu.Unlock()
	c.log.Info().Str("url", c.tc.URL()).Str("size", utils.FormatBytes(info.TotalLength)).Bool("rangeSupported", info.SupportsPartial).Msg("Probed resource")

	c.setState(StatePlanning)
	if !info.SupportsPartial || c.opts.Parts == 1 || info.TotalLength == 0 {
		c.log.Debug().Str("output", c.dest).Msg("Using single-stream download")
		c.setState(StateFetching)
		if _, err := FetchFull(ctx, c.tc, c.dest, expectedLength(info.TotalLength)); err != nil {
			return c.fail(err)
		}
		return c.finish(info)
	}

	parts := c.opts.Parts
	if uint64(parts) > info.TotalLength {
		parts = int(info.TotalLength)
	}
	ranges, err := Plan(info.TotalLength, parts)
	if err != nil {
		return c.fail(err)
	}

	c.setState(StateFetching)
	results, err := c.fetchParts(ctx, ranges)
	if err != nil {
		return c.fail(err)
	}

	c.setState(StateAssembling)
	if err := Assemble(c.dest, results); err != nil {
		return c.fail(err)
	}
	return c.finish(info)
}

// fetchParts runs one fetcher per range with at most Concurrency in flight
// (MaxConnections when unset). The first failure cancels the rest and every
// part file already written is removed; the destination is never touched here.
func (c *Coordinator) fetchParts(ctx context.Context, ranges []RangeSpec) ([]PartResult, error) {
	limit := c.opts.Concurrency
	if limit <= 0 {
		limit = utils.MaxConnections
	}
	limit = min(limit, len(ranges))
	c.log.Debug().Int("parts", len(ranges)).Int("connections", limit).Msg("Starting range downloads")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	results := make([]PartResult, len(ranges))
	for _, spec := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := FetchPart(gctx, c.tc, spec, c.dest)
			if err != nil {
				c.log.Error().Err(err).Int("chunkId", spec.Index).Msg("Error downloading chunk")
				return err
			}
			results[spec.Index] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.removeParts(len(ranges))
		return nil, err
	}
	return results, nil
}

func (c *Coordinator) removeParts(n int) {
	for i := range n {
		path := utils.PartPath(c.dest, i)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.log.Warn().Err(err).Str("file", path).Msg("Could not remove temporary part")
		}
	}
}

func (c *Coordinator) finish(info ResourceInfo) error {
	stat, err := os.Stat(c.dest)
	if err != nil {
		return c.fail(newError(KindIO, "verify output", -1, err))
	}
	if uint64(stat.Size()) != info.TotalLength {
		return c.fail(newError(KindIO, "verify output", -1, fmt.Errorf("output has %d bytes but server reported %d", stat.Size(), info.TotalLength)))
	}
	c.setState(StateDone)
	c.log.Info().Str("output", c.dest).Str("size", utils.FormatBytes(info.TotalLength)).Msg("Download completed")
	return nil
}

func (c *Coordinator) fail(err error) error {
	phase := c.State()
	c.setState(StateFailed)
	return fmt.Errorf("%s: %w", phase, err)
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(s)
	}
}

func expectedLength(total uint64) int64 {
	if total > math.MaxInt64 {
		return -1
	}
	return int64(total)
}
