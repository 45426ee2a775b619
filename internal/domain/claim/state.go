package claim

import (
	"strings"

	"github.com/turtacn/claimtrack/pkg/errors"
)

// State is the canonical lifecycle state of a claim. Both parties share the
// same State; they differ only in the narrative they are shown.
type State string

const (
	// StateBreathingSpaceActive: a breathing space pause applies and has not been lifted.
	StateBreathingSpaceActive State = "BREATHING_SPACE_ACTIVE"

	// StateMovedOffline: the claim left the online process on an application.
	StateMovedOffline State = "MOVED_OFFLINE"

	// StatePaperResponse: the defendant answered on paper.
	StatePaperResponse State = "PAPER_RESPONSE"

	// StateSettledWithAgreement: both parties signed a settlement agreement.
	StateSettledWithAgreement State = "SETTLED_WITH_AGREEMENT"

	// StateResponsePastDeadline: no response and the response deadline lapsed.
	StateResponsePastDeadline State = "RESPONSE_PAST_DEADLINE"

	// StateAwaitingResponse: no response yet, still within the deadline.
	StateAwaitingResponse State = "AWAITING_RESPONSE"

	// StateEligibleForCourtDecision: the claimant did not say whether to
	// proceed before the intention-to-proceed deadline.
	StateEligibleForCourtDecision State = "ELIGIBLE_FOR_COURT_DECISION"

	// StateAwaitingClaimantDecision: response filed, claimant yet to answer.
	StateAwaitingClaimantDecision State = "AWAITING_CLAIMANT_DECISION"

	// StateClaimWithdrawn: the claimant accepted the defendant's response.
	StateClaimWithdrawn State = "CLAIM_WITHDRAWN"

	StateMediationPending   State = "MEDIATION_PENDING"
	StateMediationFailed    State = "MEDIATION_FAILED"
	StateMediationSucceeded State = "MEDIATION_SUCCEEDED"

	StateSettlementOfferPending                     State = "SETTLEMENT_OFFER_PENDING"
	StateSettlementAcceptedAwaitingCountersignature State = "SETTLEMENT_ACCEPTED_AWAITING_COUNTERSIGNATURE"
	StateSettlementRejected                         State = "SETTLEMENT_REJECTED"

	// StateReferredToCourt: the claimant rejected the response without
	// mediation or settlement; a directions questionnaire is required.
	StateReferredToCourt State = "REFERRED_TO_COURT"
)

// allStates lists every State in precedence order.
var allStates = []State{
	StateBreathingSpaceActive,
	StateMovedOffline,
	StatePaperResponse,
	StateSettledWithAgreement,
	StateResponsePastDeadline,
	StateAwaitingResponse,
	StateEligibleForCourtDecision,
	StateAwaitingClaimantDecision,
	StateClaimWithdrawn,
	StateMediationFailed,
	StateMediationSucceeded,
	StateMediationPending,
	StateSettlementOfferPending,
	StateSettlementAcceptedAwaitingCountersignature,
	StateSettlementRejected,
	StateReferredToCourt,
}

// States returns every State in precedence order.
func States() []State {
	out := make([]State, len(allStates))
	copy(out, allStates)
	return out
}

// String implements fmt.Stringer.
func (s State) String() string { return string(s) }

// IsValid reports whether s is a known State.
func (s State) IsValid() bool {
	for _, x := range allStates {
		if x == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the claim has ended in the online process:
// withdrawn, settled by agreement, or settled through mediation.
func (s State) IsTerminal() bool {
	switch s {
	case StateClaimWithdrawn, StateSettledWithAgreement, StateMediationSucceeded:
		return true
	}
	return false
}

// ParseState parses a State name, case-insensitively.
func ParseState(v string) (State, error) {
	s := State(strings.ToUpper(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", errors.InvalidParam("unknown claim state").WithDetail(v)
	}
	return s, nil
}
