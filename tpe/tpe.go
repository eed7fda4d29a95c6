// Package tpe implements the orchestrator: the single Suggest entry
// point that gathers a trial history, applies warm-up / deduplication /
// linear-forgetting, and either delegates to the prior sampler or runs
// the full filter -> posterior -> ei pipeline to produce the next trial
// to evaluate.
package tpe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/tpe-go/tpe/errs"
	"github.com/tpe-go/tpe/ei"
	"github.com/tpe-go/tpe/filter"
	"github.com/tpe-go/tpe/posterior"
	"github.com/tpe-go/tpe/space"
)

// Config holds the suggest-call hyperparameters. DefaultConfig lists the
// defaults; Suggest replaces a zero Gamma, PriorWeight, or NEICandidates
// with its default, while a zero NStartupJobs or LinearForgetting is used
// as given (no warm-up phase, no forgetting).
type Config struct {
	// Gamma is the quantile separating "good" from "rest" trials.
	Gamma float64
	// PriorWeight is the multiplicative weight of the synthetic prior
	// component in the adaptive Parzen mixture.
	PriorWeight float64
	// NEICandidates is the number of below-posterior draws scored per
	// suggest call.
	NEICandidates int
	// NStartupJobs is the number of usable trials below which the
	// orchestrator delegates to the prior sampler.
	NStartupJobs int
	// LinearForgetting caps retained trial history to the LinearForgetting
	// lowest-loss docs when > 0 (0 disables it).
	LinearForgetting int

	// Logger receives Debug/Warn/Error events; the zero value disables
	// logging, matching zerolog's own convention.
	Logger zerolog.Logger
	// DebugDumpDir, if set, receives a JSON dump of the offending trial
	// slice when a DataCorruption error aborts a call.
	DebugDumpDir string
}

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return Config{
		Gamma:            0.15,
		PriorWeight:      0.3,
		NEICandidates:    1,
		NStartupJobs:     5,
		LinearForgetting: 0,
	}
}

func (c Config) withDefaults() Config {
	if c.Gamma == 0 {
		c.Gamma = 0.15
	}
	if c.PriorWeight == 0 {
		c.PriorWeight = 0.3
	}
	if c.NEICandidates == 0 {
		c.NEICandidates = 1
	}
	return c
}

// Suggest produces one new trial doc per id in newIDs. The current
// contract only supports a single new id per call.
func Suggest(newIDs []int, trials []space.Trial, sp space.Space, rng *rand.Rand, cfg Config) ([]space.Trial, error) {
	if len(newIDs) != 1 {
		return nil, errs.New(errs.Unsupported, "suggest currently only supports exactly one new id, got %d", len(newIDs))
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	newID := newIDs[0]

	usable, err := dedup(trials)
	if err != nil {
		cfg.dumpOnCorruption(trials, err)
		return nil, err
	}
	cfg.Logger.Debug().Int("usable_trials", len(usable)).Int("new_id", newID).Msg("suggest: gathered trials")

	if len(usable) < cfg.NStartupJobs {
		cfg.Logger.Debug().Msg("suggest: warm-up phase, delegating to prior sampler")
		b, err := space.SampleSpace(rng, sp)
		if err != nil {
			return nil, err
		}
		return []space.Trial{newTrialDoc(newID, b)}, nil
	}

	if cfg.LinearForgetting > 0 && len(usable) > cfg.LinearForgetting {
		usable = keepLowestLoss(usable, cfg.LinearForgetting)
		cfg.Logger.Debug().Int("kept", len(usable)).Msg("suggest: applied linear forgetting")
	}

	lossIdxs, lossVals := space.Losses(usable)
	below, err := posterior.Build(sp, usable, lossIdxs, lossVals, cfg.Gamma, cfg.PriorWeight, filter.Below)
	if err != nil {
		return nil, err
	}
	above, err := posterior.Build(sp, usable, lossIdxs, lossVals, cfg.Gamma, cfg.PriorWeight, filter.Above)
	if err != nil {
		return nil, err
	}

	cand, err := ei.Evaluate(rng, below, above, cfg.NEICandidates)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug().Float64("score", cand.Score).Msg("suggest: EI candidate selected")

	return []space.Trial{newTrialDoc(newID, cand.Bindings)}, nil
}

func newTrialDoc(tid int, b space.Bindings) space.Trial {
	return space.Trial{
		Tid:    tid,
		Spec:   b,
		Result: space.Result{Status: space.StatusNew},
		Misc:   space.Misc{Tid: tid},
	}
}

// dedup groups trials by parent_tid (falling back to tid when absent),
// keeps the lowest-loss doc per group (ties broken by first encountered),
// and fails with DataCorruption if the same tid appears twice.
func dedup(trials []space.Trial) ([]space.Trial, error) {
	seenTid := make(map[int]bool, len(trials))
	best := make(map[int]space.Trial)
	var order []int

	for _, tr := range trials {
		if tr.Result.Status != space.StatusOK {
			continue
		}
		if seenTid[tr.Tid] {
			return nil, errs.New(errs.DataCorruption, "duplicate tid %d in trial set", tr.Tid)
		}
		seenTid[tr.Tid] = true

		group := tr.Tid
		if tr.Misc.FromTid != nil {
			group = *tr.Misc.FromTid
		}
		if cur, ok := best[group]; !ok {
			best[group] = tr
			order = append(order, group)
		} else if tr.Result.Loss < cur.Result.Loss {
			best[group] = tr
		}
	}

	out := make([]space.Trial, 0, len(order))
	for _, g := range order {
		out = append(out, best[g])
	}
	return out, nil
}

// keepLowestLoss returns the L lowest-loss docs from trials: a hard
// top-L truncation strategy; see DESIGN.md for why the probabilistic
// forgetting curve the original implements is not used here.
func keepLowestLoss(trials []space.Trial, l int) []space.Trial {
	sorted := append([]space.Trial(nil), trials...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Result.Loss < sorted[j].Result.Loss })
	if len(sorted) > l {
		sorted = sorted[:l]
	}
	return sorted
}

func (c Config) dumpOnCorruption(trials []space.Trial, cause error) {
	c.Logger.Error().Err(cause).Msg("suggest: aborting on corrupt trial data")
	if c.DebugDumpDir == "" {
		return
	}
	data, err := json.MarshalIndent(trials, "", "  ")
	if err != nil {
		return
	}
	path := filepath.Join(c.DebugDumpDir, "tpe-corrupt-trials-"+time.Now().UTC().Format("20060102T150405Z")+".json")
	_ = os.WriteFile(path, data, 0o644)
}
