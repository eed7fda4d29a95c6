// Package space defines the search space a hyperparameter optimizer
// samples over: a closed set of distribution Families, a flat-table
// Space of named Parameters (each with its own hyperparameters and an
// optional conditional-activation predicate), Trial docs recording past
// evaluations, and the per-parameter Observe that extracts (idxs, vals)
// pairs from a trial history.
package space

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/tpe-go/tpe/distuv"
	"github.com/tpe-go/tpe/errs"
)

// Family names one of the prior distribution families a Parameter can
// draw from.
type Family string

// Supported families.
const (
	Uniform      Family = "uniform"
	QUniform     Family = "quniform"
	LogUniform   Family = "loguniform"
	QLogUniform  Family = "qloguniform"
	NormalFamily Family = "normal"
	QNormal      Family = "qnormal"
	LogNormal    Family = "lognormal"
	QLogNormal   Family = "qlognormal"
	RandInt      Family = "randint"
)

// IsLogFamily reports whether f samples in log-space (the loguniform and
// lognormal families).
func (f Family) IsLogFamily() bool {
	switch f {
	case LogUniform, QLogUniform, LogNormal, QLogNormal:
		return true
	default:
		return false
	}
}

// IsContinuous reports whether f has a derivative to refine along —
// every family except randint, whose support is a discrete index set.
func (f Family) IsContinuous() bool {
	return f != RandInt
}

// Bindings maps node ids already assigned in the current evaluation
// context, used by a Parameter's ActiveWhen predicate to express
// conditional activation: some parameters only exist given a particular
// choice of another (e.g. a kernel-specific hyperparameter that only
// applies when the chosen kernel is "rbf").
type Bindings map[string]float64

// Parameter is a named random variable: a stable node id, a family, and
// that family's hyperparameter vector.
type Parameter struct {
	NodeID string
	Family Family

	// Low/High bound uniform, quniform, loguniform, qloguniform.
	Low, High float64
	// Mu/Sigma parameterize normal, qnormal, lognormal, qlognormal.
	Mu, Sigma float64
	// Q is the quantization step for the q-prefixed families.
	Q float64
	// Upper bounds randint's support {0, ..., Upper-1}.
	Upper int

	// ActiveWhen, if non-nil, reports whether this parameter participates
	// given the bindings chosen so far. A nil ActiveWhen is always active.
	ActiveWhen func(Bindings) bool
}

// Active reports whether p participates in the given bindings.
func (p Parameter) Active(b Bindings) bool {
	if p.ActiveWhen == nil {
		return true
	}
	return p.ActiveWhen(b)
}

// Validate checks a Parameter's hyperparameters are well-formed for its
// family: low < high for the uniform families, sigma > 0 for the normal
// families, upper > 0 for randint.
func (p Parameter) Validate() error {
	switch p.Family {
	case Uniform, QUniform, LogUniform, QLogUniform:
		if p.Low >= p.High {
			return errs.New(errs.InvalidArgument, "parameter %q: low (%v) must be < high (%v)", p.NodeID, p.Low, p.High)
		}
	case NormalFamily, QNormal, LogNormal, QLogNormal:
		if p.Sigma <= 0 {
			return errs.New(errs.InvalidArgument, "parameter %q: sigma (%v) must be > 0", p.NodeID, p.Sigma)
		}
	case RandInt:
		if p.Upper <= 0 {
			return errs.New(errs.InvalidArgument, "parameter %q: upper (%v) must be > 0", p.NodeID, p.Upper)
		}
	default:
		return errs.New(errs.Unsupported, "parameter %q: unknown family %q", p.NodeID, p.Family)
	}
	return nil
}

// Space is the flat table of Parameters defining a search space.
type Space struct {
	Params []Parameter
}

// Validate validates every parameter in the space.
func (s Space) Validate() error {
	for _, p := range s.Params {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SamplePrior draws one value for p directly from its prior distribution,
// bypassing the Parzen posterior. Used during the warm-up phase before
// enough trials exist to fit a posterior, and as the fallback for plain
// random search via SampleSpace.
func SamplePrior(rng *rand.Rand, p Parameter) (float64, error) {
	snap := func(x, q float64) float64 {
		if q <= 0 {
			return x
		}
		return math.Max(math.Ceil(x/q)*q, q)
	}
	// d is held as the Rander interface rather than a concrete distuv type
	// so every continuous family funnels through the same Rand() call.
	var d distuv.Rander
	switch p.Family {
	case Uniform, QUniform, LogUniform, QLogUniform:
		d = distuv.Uniform{Low: p.Low, High: p.High, Src: rng}
	case NormalFamily, QNormal:
		d = distuv.Normal{Mu: p.Mu, Sigma: p.Sigma, Src: rng}
	case LogNormal, QLogNormal:
		d = distuv.LogNormal{Mu: p.Mu, Sigma: p.Sigma, Src: rng}
	case RandInt:
		return float64(distuv.RandInt{Upper: p.Upper, Src: rng}.Rand()), nil
	default:
		return 0, errs.New(errs.Unsupported, "unknown family %q", p.Family)
	}

	x := d.Rand()
	switch p.Family {
	case LogUniform, QLogUniform:
		x = math.Exp(x)
	}
	switch p.Family {
	case QUniform, QLogUniform, QNormal, QLogNormal:
		x = snap(x, p.Q)
	}
	return x, nil
}

// SampleSpace draws one full assignment from every parameter's prior,
// honoring conditional activation: a parameter whose ActiveWhen predicate
// rejects the bindings chosen so far is left unassigned.
func SampleSpace(rng *rand.Rand, s Space) (Bindings, error) {
	b := make(Bindings, len(s.Params))
	for _, p := range s.Params {
		if !p.Active(b) {
			continue
		}
		v, err := SamplePrior(rng, p)
		if err != nil {
			return nil, err
		}
		b[p.NodeID] = v
	}
	return b, nil
}

// TrialStatus is the lifecycle state of a Trial's evaluation.
type TrialStatus string

// Supported trial statuses.
const (
	StatusOK     TrialStatus = "ok"
	StatusFailed TrialStatus = "failed"
	StatusNew    TrialStatus = "new"
)

// Result holds the outcome of evaluating a Trial's objective function.
type Result struct {
	Status TrialStatus
	Loss   float64
}

// Misc carries orchestrator bookkeeping mirrored from the trial store:
// the command and working directory a trial ran with, and the tid of the
// trial it was resumed from, if any.
type Misc struct {
	Tid     int
	FromTid *int
	Cmd     string
	Workdir string
}

// Trial is an immutable record of one evaluation: the bindings it ran
// with, its outcome, and bookkeeping. The estimator only ever reads Tid,
// Result, Spec, and Misc.FromTid from it.
type Trial struct {
	Tid    int
	Spec   Bindings
	Result Result
	Misc   Misc
}

// Observe extracts the (idxs, vals) pair for one parameter from a trial
// history: the strictly increasing, duplicate-free tids of every OK trial
// that assigned nodeID, paired with the assigned values.
func Observe(trials []Trial, nodeID string) (idxs []int, vals []float64) {
	type pair struct {
		tid int
		val float64
	}
	var pairs []pair
	for _, tr := range trials {
		if tr.Result.Status != StatusOK {
			continue
		}
		v, ok := tr.Spec[nodeID]
		if !ok {
			continue
		}
		pairs = append(pairs, pair{tr.Tid, v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].tid < pairs[j].tid })
	idxs = make([]int, len(pairs))
	vals = make([]float64, len(pairs))
	for i, p := range pairs {
		idxs[i] = p.tid
		vals[i] = p.val
	}
	return idxs, vals
}

// Losses extracts the (tid, loss) pairs of every OK trial, in trial order.
func Losses(trials []Trial) (idxs []int, vals []float64) {
	for _, tr := range trials {
		if tr.Result.Status != StatusOK {
			continue
		}
		idxs = append(idxs, tr.Tid)
		vals = append(vals, tr.Result.Loss)
	}
	return idxs, vals
}
