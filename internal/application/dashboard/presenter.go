// Package dashboard composes claim classification and narrative selection
// into the view each party sees, and wraps it with record loading, metrics
// and view events for the HTTP and CLI surfaces.
package dashboard

import (
	"time"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/domain/narrative"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// View is what a viewer is shown for one claim at one instant.
type View struct {
	ExternalID  string               `json:"external_id" yaml:"external_id"`
	Viewer      narrative.Viewer     `json:"viewer" yaml:"viewer"`
	State       claim.State          `json:"state" yaml:"state"`
	Terminal    bool                 `json:"terminal" yaml:"terminal"`
	Rule        string               `json:"rule" yaml:"rule"`
	Priority    int                  `json:"priority" yaml:"priority"`
	Narrative   narrative.Descriptor `json:"narrative" yaml:"narrative"`
	EvaluatedAt time.Time            `json:"evaluated_at" yaml:"evaluated_at"`
}

// Presenter is the pure classify-then-select pipeline. It performs no I/O
// and holds no mutable state.
type Presenter struct {
	classifier *claim.Classifier
	selector   *narrative.Selector
}

// NewPresenter returns a presenter reading deadlines with e.
func NewPresenter(e claim.DeadlineEvaluator) *Presenter {
	return &Presenter{
		classifier: claim.NewClassifier(e),
		selector:   narrative.NewSelector(e),
	}
}

// Present classifies r at now and selects the narrative for viewer.
func (p *Presenter) Present(r *claim.Record, viewer narrative.Viewer, now time.Time) (*View, error) {
	if !viewer.IsValid() {
		return nil, errors.InvalidParam("unknown viewer").WithDetail("viewer=" + string(viewer))
	}
	res, err := p.classifier.Explain(r, now)
	if err != nil {
		return nil, err
	}
	desc, err := p.selector.Select(res.State, r, viewer)
	if err != nil {
		return nil, err
	}
	return &View{
		ExternalID:  r.ExternalID,
		Viewer:      viewer,
		State:       res.State,
		Terminal:    res.State.IsTerminal(),
		Rule:        res.Rule,
		Priority:    res.Priority,
		Narrative:   desc,
		EvaluatedAt: now,
	}, nil
}

// Rules returns the classification precedence table.
func (p *Presenter) Rules() []claim.RuleInfo {
	return p.classifier.Rules()
}

// NarrativeKeys lists every narrative key the presenter can produce.
func (p *Presenter) NarrativeKeys() []string {
	return p.selector.Keys()
}
