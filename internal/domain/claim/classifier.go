package claim

import (
	"time"

	"github.com/turtacn/claimtrack/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Precedence table
// ─────────────────────────────────────────────────────────────────────────────

// evaluation carries the inputs shared by every guard.
type evaluation struct {
	r         *Record
	now       time.Time
	deadlines DeadlineEvaluator
}

func (e *evaluation) expired(d *Date) bool {
	return d != nil && e.deadlines.HasExpired(*d, e.now)
}

func (e *evaluation) awaitingClaimant() bool {
	return e.r.Response != nil && e.r.ClaimantResponse == nil
}

func (e *evaluation) rejected() bool {
	return e.r.ClaimantResponse != nil && e.r.ClaimantResponse.Kind == ClaimantRejection
}

// rule is one row of the precedence table: when guards, then resolves.
type rule struct {
	name   string
	states []State
	when   func(e *evaluation) bool
	then   func(e *evaluation) State
}

func always(s State) func(*evaluation) State {
	return func(*evaluation) State { return s }
}

// precedence is evaluated top to bottom; the first guard that holds decides
// the state. The order is the tie-break between simultaneously true guards.
var precedence = []rule{
	{
		name:   "breathing space active",
		states: []State{StateBreathingSpaceActive},
		when:   func(e *evaluation) bool { return e.r.BreathingSpace.IsActive() },
		then:   always(StateBreathingSpaceActive),
	},
	{
		name:   "proceed offline",
		states: []State{StateMovedOffline},
		when:   func(e *evaluation) bool { return e.r.ProceedOfflineReason != "" },
		then:   always(StateMovedOffline),
	},
	{
		name:   "paper response",
		states: []State{StatePaperResponse},
		when:   func(e *evaluation) bool { return e.r.PaperResponse },
		then:   always(StatePaperResponse),
	},
	{
		name:   "settlement agreement signed by both parties",
		states: []State{StateSettledWithAgreement},
		when:   func(e *evaluation) bool { return e.r.Settlement.AgreementMade() },
		then:   always(StateSettledWithAgreement),
	},
	{
		name:   "no response after response deadline",
		states: []State{StateResponsePastDeadline},
		when: func(e *evaluation) bool {
			return e.r.Response == nil && e.expired(&e.r.ResponseDeadline)
		},
		then: always(StateResponsePastDeadline),
	},
	{
		name:   "no response",
		states: []State{StateAwaitingResponse},
		when:   func(e *evaluation) bool { return e.r.Response == nil },
		then:   always(StateAwaitingResponse),
	},
	{
		name:   "intention to proceed deadline lapsed",
		states: []State{StateEligibleForCourtDecision},
		when: func(e *evaluation) bool {
			return e.awaitingClaimant() && e.expired(e.r.IntentionToProceedDeadline)
		},
		then: always(StateEligibleForCourtDecision),
	},
	{
		name:   "awaiting claimant response",
		states: []State{StateAwaitingClaimantDecision},
		when:   func(e *evaluation) bool { return e.awaitingClaimant() },
		then:   always(StateAwaitingClaimantDecision),
	},
	{
		name:   "claimant accepted response",
		states: []State{StateClaimWithdrawn},
		when: func(e *evaluation) bool {
			return e.r.ClaimantResponse != nil && e.r.ClaimantResponse.Kind == ClaimantAcceptation
		},
		then: always(StateClaimWithdrawn),
	},
	{
		name:   "claimant rejected with mutual mediation",
		states: []State{StateMediationFailed, StateMediationSucceeded, StateMediationPending},
		when:   func(e *evaluation) bool { return e.rejected() && e.r.MutualMediation() },
		then: func(e *evaluation) State {
			switch e.r.MediationOutcome {
			case MediationFailed:
				return StateMediationFailed
			case MediationSucceeded:
				return StateMediationSucceeded
			default:
				return StateMediationPending
			}
		},
	},
	{
		name: "claimant rejected with settlement activity",
		states: []State{
			StateSettlementOfferPending,
			StateSettlementAcceptedAwaitingCountersignature,
			StateSettlementRejected,
		},
		when: func(e *evaluation) bool { return e.rejected() && len(e.r.Settlement) > 0 },
		then: func(e *evaluation) State {
			switch e.r.Settlement.Stage() {
			case SettlementStageAccepted:
				return StateSettlementAcceptedAwaitingCountersignature
			case SettlementStageRejected:
				return StateSettlementRejected
			default:
				return StateSettlementOfferPending
			}
		},
	},
	{
		name:   "claimant rejected without mediation or settlement",
		states: []State{StateReferredToCourt},
		when:   func(e *evaluation) bool { return e.rejected() },
		then:   always(StateReferredToCourt),
	},
}

// RuleInfo describes one row of the precedence table for listings.
type RuleInfo struct {
	Priority int     `json:"priority" yaml:"priority"`
	Name     string  `json:"name" yaml:"name"`
	States   []State `json:"states" yaml:"states"`
}

// Classification is a State together with the table row that produced it.
type Classification struct {
	State    State  `json:"state"`
	Priority int    `json:"priority"`
	Rule     string `json:"rule"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Classifier
// ─────────────────────────────────────────────────────────────────────────────

// Classifier reduces a Record to its lifecycle State. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	deadlines DeadlineEvaluator
	rules     []rule
}

// NewClassifier returns a Classifier that reads deadlines through d.
func NewClassifier(d DeadlineEvaluator) *Classifier {
	return &Classifier{deadlines: d, rules: precedence}
}

// Deadlines returns the evaluator the classifier was built with.
func (c *Classifier) Deadlines() DeadlineEvaluator { return c.deadlines }

// Classify validates r and returns the State of the first matching rule.
// An invalid record yields an InvalidRecordError and no State.
func (c *Classifier) Classify(r *Record, now time.Time) (State, error) {
	res, err := c.Explain(r, now)
	if err != nil {
		return "", err
	}
	return res.State, nil
}

// Explain is Classify, also reporting which rule decided.
func (c *Classifier) Explain(r *Record, now time.Time) (Classification, error) {
	if err := Validate(r); err != nil {
		return Classification{}, err
	}
	e := &evaluation{r: r, now: now, deadlines: c.deadlines}
	for i, rl := range c.rules {
		if rl.when(e) {
			return Classification{State: rl.then(e), Priority: i + 1, Rule: rl.name}, nil
		}
	}
	// Unreachable for a validated record: rules 9 and 12 cover both claimant
	// response kinds.
	return Classification{}, errors.Internal("no classification rule matched").WithDetail("external_id=" + r.ExternalID)
}

// Rules lists the precedence table, highest priority first.
func (c *Classifier) Rules() []RuleInfo {
	out := make([]RuleInfo, 0, len(c.rules))
	for i, rl := range c.rules {
		states := make([]State, len(rl.states))
		copy(states, rl.states)
		out = append(out, RuleInfo{Priority: i + 1, Name: rl.name, States: states})
	}
	return out
}
