package commands

import (
	"encoding/json"
	"os"

	"github.com/tpe-go/tpe/errs"
	"github.com/tpe-go/tpe/space"
)

// inputParameter is the JSON shape of one search-space parameter.
type inputParameter struct {
	NodeID string  `json:"node_id"`
	Family string  `json:"family"`
	Low    float64 `json:"low,omitempty"`
	High   float64 `json:"high,omitempty"`
	Mu     float64 `json:"mu,omitempty"`
	Sigma  float64 `json:"sigma,omitempty"`
	Q      float64 `json:"q,omitempty"`
	Upper  int     `json:"upper,omitempty"`
}

// inputTrial is the JSON shape of one trial doc.
type inputTrial struct {
	Tid     int                `json:"tid"`
	FromTid *int               `json:"from_tid,omitempty"`
	Spec    map[string]float64 `json:"spec"`
	Status  string             `json:"status"`
	Loss    float64            `json:"loss"`
}

// inputConfig mirrors tpe.Config's JSON-settable fields.
type inputConfig struct {
	Gamma            float64 `json:"gamma,omitempty"`
	PriorWeight      float64 `json:"prior_weight,omitempty"`
	NEICandidates    int     `json:"n_ei_candidates,omitempty"`
	NStartupJobs     int     `json:"n_startup_jobs,omitempty"`
	LinearForgetting int     `json:"linear_forgetting,omitempty"`
}

// inputFile is the top-level document tpe-suggest reads.
type inputFile struct {
	NewID  int              `json:"new_id"`
	Seed   uint64           `json:"seed"`
	Space  []inputParameter `json:"space"`
	Trials []inputTrial     `json:"trials"`
	Config inputConfig      `json:"config"`
}

func loadInput(path string) (inputFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return inputFile{}, errs.Wrap(errs.InvalidArgument, err, "reading input file %q", path)
	}
	var in inputFile
	if err := json.Unmarshal(data, &in); err != nil {
		return inputFile{}, errs.Wrap(errs.InvalidArgument, err, "parsing input file %q", path)
	}
	return in, nil
}

func (in inputFile) toSpace() space.Space {
	params := make([]space.Parameter, len(in.Space))
	for i, p := range in.Space {
		params[i] = space.Parameter{
			NodeID: p.NodeID,
			Family: space.Family(p.Family),
			Low:    p.Low,
			High:   p.High,
			Mu:     p.Mu,
			Sigma:  p.Sigma,
			Q:      p.Q,
			Upper:  p.Upper,
		}
	}
	return space.Space{Params: params}
}

func (in inputFile) toTrials() []space.Trial {
	trials := make([]space.Trial, len(in.Trials))
	for i, tr := range in.Trials {
		status := space.TrialStatus(tr.Status)
		if status == "" {
			status = space.StatusOK
		}
		trials[i] = space.Trial{
			Tid:    tr.Tid,
			Spec:   space.Bindings(tr.Spec),
			Result: space.Result{Status: status, Loss: tr.Loss},
			Misc:   space.Misc{Tid: tr.Tid, FromTid: tr.FromTid},
		}
	}
	return trials
}
