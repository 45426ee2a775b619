package narrative

import (
	"fmt"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/pkg/errors"
)

const keyPrefix = "dashboard."

// Selector maps a classified record to the narrative each viewer is shown.
// It is safe for concurrent use.
type Selector struct {
	deadlines claim.DeadlineEvaluator
	rows      []entry
}

// NewSelector returns a selector that resolves deadline cutoffs with e.
func NewSelector(e claim.DeadlineEvaluator) *Selector {
	return &Selector{deadlines: e, rows: table}
}

// Select returns the narrative for viewer given the record's state. A missing
// table row is a defect and yields an UnmappedNarrative error.
func (s *Selector) Select(state claim.State, r *claim.Record, viewer Viewer) (Descriptor, error) {
	if !viewer.IsValid() {
		return Descriptor{}, errors.InvalidParam("unknown viewer").WithDetail("viewer=" + string(viewer))
	}
	if r == nil {
		return Descriptor{}, errors.InvalidRecord(claim.RuleMissingIdentity, "record is nil")
	}
	flags := FlagsOf(r)
	for i := range s.rows {
		e := &s.rows[i]
		if e.state != state || e.viewer != viewer || !e.when.admits(flags) {
			continue
		}
		return s.describe(e, r, viewer), nil
	}
	return Descriptor{}, errors.UnmappedNarrative(fmt.Sprintf("state=%s viewer=%s %s", state, viewer, flags))
}

// Keys lists every key the selector can produce, in table order and without
// duplicates. Renderers use it to check their catalogue is complete.
func (s *Selector) Keys() []string {
	seen := make(map[string]bool, len(s.rows))
	keys := make([]string, 0, len(s.rows))
	for i := range s.rows {
		k := fullKey(&s.rows[i])
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func fullKey(e *entry) string {
	return keyPrefix + e.viewer.keySegment() + "." + e.key
}

func (s *Selector) describe(e *entry, r *claim.Record, viewer Viewer) Descriptor {
	p := Params{
		ClaimantName:   r.ClaimantName,
		DefendantName:  r.DefendantName,
		OtherPartyName: r.PartyName(viewer.Other()),
	}
	if d := s.deadlineFor(e.deadline, r); d != nil {
		p.Deadline = d
	}
	if e.params&withPayment != 0 && r.Response != nil && r.Response.PaymentDeclaration != nil {
		amount := r.Response.PaymentDeclaration.PaidAmount
		p.PaidAmount = &amount
		if paid := r.Response.PaymentDeclaration.PaidDate; !paid.IsZero() {
			p.PaidDate = &paid
		}
	}
	if e.params&withRespondedOn != 0 && r.Response != nil && !r.Response.RespondedAt.IsZero() {
		on := claim.DateOf(r.Response.RespondedAt.In(s.deadlines.Location()))
		p.RespondedOn = &on
	}
	if e.params&withPausedSince != 0 && r.BreathingSpace != nil && r.BreathingSpace.EnteredDate != nil {
		since := *r.BreathingSpace.EnteredDate
		p.PausedSince = &since
	}
	if len(e.docs) > 0 {
		p.Documents = append([]DocumentRef(nil), e.docs...)
	}
	return Descriptor{Key: fullKey(e), Params: p}
}

func (s *Selector) deadlineFor(src deadlineSource, r *claim.Record) *ResolvedDeadline {
	var d *claim.Date
	switch src {
	case responseDeadline:
		d = &r.ResponseDeadline
	case intentionToProceedDeadline:
		d = r.IntentionToProceedDeadline
	case questionnaireDeadline:
		d = r.DirectionsQuestionnaireDeadline
	}
	if d == nil || d.IsZero() {
		return nil
	}
	return &ResolvedDeadline{Date: *d, Cutoff: s.deadlines.CutoffOn(*d)}
}
