// Package batch implements the Batch Dispatcher (§4.6, §5): fanning N
// stochastic simulation runs out over a bounded worker pool, chunking
// seeds per worker, and returning per-seed SimulationRuns.
package batch

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
	"github.com/rpgo/retirement-sim/internal/simbuild"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

// maxWorkers bounds the pool regardless of available parallelism (§4.6
// "fixed set of workers (≤16)").
const maxWorkers = 16

// Request describes a batch of stochastic runs over one snapshot.
// NewScheduler must return a scheduler backed by freshly constructed
// module instances every call: module state (guardrail cut counters,
// one-time-event firing, RMD snapshots) is per-run, so concurrent seeds
// sharing one scheduler would corrupt each other's results (§5 "each
// run owns its SimulationState exclusively").
type Request struct {
	Snapshot     *domain.Snapshot
	ScenarioID   string
	StartDate    time.Time
	N            int
	Workers      int // 0 picks runtime.NumCPU(), capped at maxWorkers
	NewScheduler func() *engine.Scheduler
}

// Run fans req.N stochastic runs out over a worker pool and returns one
// SimulationRun per seed, ordered by RunIndex. Every failure, including a
// setup failure such as EmptyPopulation or a cancelled ctx, is captured on
// the affected SimulationRun rather than failing the whole batch; no
// worker returns an error, so the returned error is always nil.
func Run(ctx context.Context, req Request) ([]domain.SimulationRun, error) {
	return RunStreaming(ctx, req, nil)
}

// RunStreaming behaves like Run, additionally pushing each completed
// run onto progress (if non-nil) as soon as it finishes, for a live
// progress display (§4.6); progress is closed before returning.
func RunStreaming(ctx context.Context, req Request, progress chan<- domain.SimulationRun) ([]domain.SimulationRun, error) {
	if progress != nil {
		defer close(progress)
	}
	if req.N <= 0 {
		return nil, nil
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers > req.N {
		workers = req.N
	}

	baseSeed := hashStringToSeed(fmt.Sprintf("%s:%s", req.ScenarioID, dateutil.FormatISODate(req.StartDate)))
	seeds := make([]uint64, req.N)
	for k := 1; k <= req.N; k++ {
		seeds[k-1] = baseSeed + uint64(k)
	}

	chunks := chunkSeeds(seeds, chunkSize(req.N, workers))
	runs := make([]domain.SimulationRun, req.N)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	runIndex := 0
	for _, chunk := range chunks {
		chunk := chunk
		start := runIndex
		runIndex += len(chunk)
		g.Go(func() error {
			for i, seed := range chunk {
				var run domain.SimulationRun
				if err := gctx.Err(); err != nil {
					run = errorRun(req.ScenarioID, start+i, seed, err)
				} else {
					run = executeOne(req, start+i, seed)
				}
				runs[start+i] = run
				if progress != nil {
					progress <- run
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return runs, err
	}
	return runs, nil
}

func executeOne(req Request, runIndex int, seed uint64) domain.SimulationRun {
	startedAt := time.Now()
	input, err := simbuild.Build(req.Snapshot, req.StartDate)
	if err != nil {
		return errorRun(req.ScenarioID, runIndex, seed, err)
	}
	input.Settings.SummaryOnly = true
	input.Settings.Seed = &seed

	result, err := req.NewScheduler().Run(input)
	run := domain.SimulationRun{
		ID:         uuid.NewString(),
		ScenarioID: req.ScenarioID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		RunIndex:   runIndex,
		Seed:       seed,
		Result:     result,
	}
	if err != nil {
		run.Status = domain.StatusError
		run.ErrorMessage = err.Error()
		return run
	}
	run.Status = domain.StatusSuccess
	return run
}

func errorRun(scenarioID string, runIndex int, seed uint64, err error) domain.SimulationRun {
	now := time.Now()
	return domain.SimulationRun{
		ID:           uuid.NewString(),
		ScenarioID:   scenarioID,
		StartedAt:    now,
		FinishedAt:   now,
		RunIndex:     runIndex,
		Seed:         seed,
		Status:       domain.StatusError,
		ErrorMessage: err.Error(),
	}
}

// chunkSize implements §4.6's batch sizing: min(16, max(4, ceil(N/workers))).
func chunkSize(n, workers int) int {
	perWorker := (n + workers - 1) / workers
	size := max(4, perWorker)
	return min(16, size)
}

func chunkSeeds(seeds []uint64, size int) [][]uint64 {
	var chunks [][]uint64
	for i := 0; i < len(seeds); i += size {
		end := min(i+size, len(seeds))
		chunks = append(chunks, seeds[i:end])
	}
	return chunks
}

// hashStringToSeed derives a deterministic PRNG seed from a string key
// (§6 Randomness: "hashStringToSeed(\"scenarioId:startDate\")").
func hashStringToSeed(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}
