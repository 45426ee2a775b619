package narrative

import "github.com/turtacn/claimtrack/internal/domain/claim"

// deadlineSource names the record deadline a narrative quotes.
type deadlineSource uint8

const (
	noDeadline deadlineSource = iota
	responseDeadline
	intentionToProceedDeadline
	questionnaireDeadline
)

// paramSet selects the optional parameters a narrative carries. Party names
// are always filled.
type paramSet uint8

const (
	withPayment paramSet = 1 << iota
	withRespondedOn
	withPausedSince
)

// entry is one row of the narrative table. Rows for the same state and
// viewer are tried in order and the first whose pattern admits the record's
// flags wins, so specific rows come before the catch-all.
type entry struct {
	state    claim.State
	viewer   Viewer
	when     match
	key      string
	deadline deadlineSource
	params   paramSet
	docs     []DocumentRef
}

var (
	alreadyPaid = match{defence: DefenceAlreadyPaid}
	hearing     = match{hearing: yes}
)

// table is the full narrative mapping. Every (state, viewer) pair ends with a
// catch-all row.
var table = []entry{
	// Breathing space
	{state: claim.StateBreathingSpaceActive, viewer: ViewerClaimant, key: "breathingSpace.active", params: withPausedSince},
	{state: claim.StateBreathingSpaceActive, viewer: ViewerDefendant, key: "breathingSpace.active", params: withPausedSince},

	// Moved offline
	{state: claim.StateMovedOffline, viewer: ViewerClaimant, when: match{offlineBy: OfflineClaimant}, key: "movedOffline.claimantApplied"},
	{state: claim.StateMovedOffline, viewer: ViewerClaimant, when: match{offlineBy: OfflineDefendant}, key: "movedOffline.defendantApplied"},
	{state: claim.StateMovedOffline, viewer: ViewerClaimant, key: "movedOffline"},
	{state: claim.StateMovedOffline, viewer: ViewerDefendant, when: match{offlineBy: OfflineClaimant}, key: "movedOffline.claimantApplied"},
	{state: claim.StateMovedOffline, viewer: ViewerDefendant, when: match{offlineBy: OfflineDefendant}, key: "movedOffline.defendantApplied"},
	{state: claim.StateMovedOffline, viewer: ViewerDefendant, key: "movedOffline"},

	// Paper response
	{state: claim.StatePaperResponse, viewer: ViewerClaimant, key: "paperResponse"},
	{state: claim.StatePaperResponse, viewer: ViewerDefendant, key: "paperResponse"},

	// Settled
	{state: claim.StateSettledWithAgreement, viewer: ViewerClaimant, key: "settledWithAgreement", docs: []DocumentRef{DocSettlementAgreement}},
	{state: claim.StateSettledWithAgreement, viewer: ViewerDefendant, key: "settledWithAgreement", docs: []DocumentRef{DocSettlementAgreement}},

	// No response yet
	{state: claim.StateResponsePastDeadline, viewer: ViewerClaimant, key: "responsePastDeadline", deadline: responseDeadline},
	{state: claim.StateResponsePastDeadline, viewer: ViewerDefendant, key: "responsePastDeadline", deadline: responseDeadline},
	{state: claim.StateAwaitingResponse, viewer: ViewerClaimant, when: match{moreTime: yes}, key: "awaitingResponse.moreTimeRequested", deadline: responseDeadline},
	{state: claim.StateAwaitingResponse, viewer: ViewerClaimant, key: "awaitingResponse", deadline: responseDeadline},
	{state: claim.StateAwaitingResponse, viewer: ViewerDefendant, when: match{moreTime: yes}, key: "awaitingResponse.moreTimeRequested", deadline: responseDeadline},
	{state: claim.StateAwaitingResponse, viewer: ViewerDefendant, key: "awaitingResponse", deadline: responseDeadline},

	// Claimant has not answered
	{state: claim.StateEligibleForCourtDecision, viewer: ViewerClaimant, key: "intentionToProceedLapsed", deadline: intentionToProceedDeadline, params: withRespondedOn, docs: []DocumentRef{DocDefendantResponse}},
	{state: claim.StateEligibleForCourtDecision, viewer: ViewerDefendant, key: "intentionToProceedLapsed", deadline: intentionToProceedDeadline, params: withRespondedOn},

	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerClaimant, when: match{settlement: claim.SettlementStageOffered}, key: "awaitingClaimantDecision.settlementOffered", deadline: intentionToProceedDeadline},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerClaimant, when: match{settlement: claim.SettlementStageAccepted}, key: "awaitingClaimantDecision.settlementAcceptedAwaitingDefendant", deadline: intentionToProceedDeadline},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerClaimant, when: match{settlement: claim.SettlementStageRejected}, key: "awaitingClaimantDecision.settlementRejected", deadline: intentionToProceedDeadline},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerClaimant, when: alreadyPaid, key: "awaitingClaimantDecision.alreadyPaid", deadline: intentionToProceedDeadline, params: withPayment | withRespondedOn, docs: []DocumentRef{DocDefendantResponse}},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerClaimant, when: match{defence: DefenceAdmission}, key: "awaitingClaimantDecision.admission", deadline: intentionToProceedDeadline, params: withRespondedOn, docs: []DocumentRef{DocDefendantResponse}},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerClaimant, key: "awaitingClaimantDecision.dispute", deadline: intentionToProceedDeadline, params: withRespondedOn, docs: []DocumentRef{DocDefendantResponse}},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerDefendant, when: match{settlement: claim.SettlementStageOffered}, key: "awaitingClaimantDecision.settlementOffered"},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerDefendant, when: match{settlement: claim.SettlementStageAccepted}, key: "awaitingClaimantDecision.signAgreement", docs: []DocumentRef{DocSettlementAgreement}},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerDefendant, when: match{settlement: claim.SettlementStageRejected}, key: "awaitingClaimantDecision.settlementRejected", deadline: questionnaireDeadline},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerDefendant, when: alreadyPaid, key: "awaitingClaimantDecision.alreadyPaid", deadline: intentionToProceedDeadline, params: withPayment},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerDefendant, when: match{mediation: yes}, key: "awaitingClaimantDecision.mediationSuggested", deadline: intentionToProceedDeadline},
	{state: claim.StateAwaitingClaimantDecision, viewer: ViewerDefendant, key: "awaitingClaimantDecision", deadline: intentionToProceedDeadline},

	// Claimant accepted the response
	{state: claim.StateClaimWithdrawn, viewer: ViewerClaimant, key: "claimWithdrawn"},
	{state: claim.StateClaimWithdrawn, viewer: ViewerDefendant, key: "claimWithdrawn"},

	// Mediation
	{state: claim.StateMediationPending, viewer: ViewerClaimant, when: alreadyPaid, key: "mediation.pending.alreadyPaid", params: withPayment},
	{state: claim.StateMediationPending, viewer: ViewerClaimant, key: "mediation.pending"},
	{state: claim.StateMediationPending, viewer: ViewerDefendant, when: alreadyPaid, key: "mediation.pending.alreadyPaid", params: withPayment},
	{state: claim.StateMediationPending, viewer: ViewerDefendant, key: "mediation.pending"},

	{state: claim.StateMediationFailed, viewer: ViewerClaimant, when: alreadyPaid, key: "mediation.failed.alreadyPaid", deadline: questionnaireDeadline, params: withPayment},
	{state: claim.StateMediationFailed, viewer: ViewerClaimant, when: hearing, key: "mediation.failed.hearingRequirements", deadline: questionnaireDeadline, docs: []DocumentRef{DocHearingRequirements}},
	{state: claim.StateMediationFailed, viewer: ViewerClaimant, key: "mediation.failed", deadline: questionnaireDeadline},
	{state: claim.StateMediationFailed, viewer: ViewerDefendant, when: match{defence: DefenceAlreadyPaid, hearing: yes}, key: "mediation.failed.alreadyPaid.hearingRequirements", params: withPayment, docs: []DocumentRef{DocHearingRequirements}},
	{state: claim.StateMediationFailed, viewer: ViewerDefendant, when: alreadyPaid, key: "mediation.failed.alreadyPaid", deadline: questionnaireDeadline, params: withPayment},
	{state: claim.StateMediationFailed, viewer: ViewerDefendant, when: hearing, key: "mediation.failed.hearingRequirements", docs: []DocumentRef{DocHearingRequirements}},
	{state: claim.StateMediationFailed, viewer: ViewerDefendant, key: "mediation.failed", deadline: questionnaireDeadline},

	{state: claim.StateMediationSucceeded, viewer: ViewerClaimant, key: "mediation.succeeded", docs: []DocumentRef{DocMediationAgreement}},
	{state: claim.StateMediationSucceeded, viewer: ViewerDefendant, key: "mediation.succeeded", docs: []DocumentRef{DocMediationAgreement}},

	// Settlement
	{state: claim.StateSettlementOfferPending, viewer: ViewerClaimant, key: "settlementOffer.decideWhetherToProceed", deadline: questionnaireDeadline},
	{state: claim.StateSettlementOfferPending, viewer: ViewerDefendant, key: "settlementOffer.awaitingClaimant"},
	{state: claim.StateSettlementAcceptedAwaitingCountersignature, viewer: ViewerClaimant, key: "settlement.awaitingCountersignature"},
	{state: claim.StateSettlementAcceptedAwaitingCountersignature, viewer: ViewerDefendant, key: "settlement.signAgreement", docs: []DocumentRef{DocSettlementAgreement}},
	{state: claim.StateSettlementRejected, viewer: ViewerClaimant, key: "settlement.rejected"},
	{state: claim.StateSettlementRejected, viewer: ViewerDefendant, key: "settlement.rejected.completeDirectionsQuestionnaire", deadline: questionnaireDeadline},

	// Referred to court
	{state: claim.StateReferredToCourt, viewer: ViewerClaimant, when: alreadyPaid, key: "referredToCourt.alreadyPaid", params: withPayment, docs: []DocumentRef{DocDefendantResponse}},
	{state: claim.StateReferredToCourt, viewer: ViewerClaimant, when: hearing, key: "referredToCourt.hearingRequirements", docs: []DocumentRef{DocHearingRequirements}},
	{state: claim.StateReferredToCourt, viewer: ViewerClaimant, key: "referredToCourt", deadline: questionnaireDeadline},
	{state: claim.StateReferredToCourt, viewer: ViewerDefendant, when: alreadyPaid, key: "referredToCourt.alreadyPaid", params: withPayment, docs: []DocumentRef{DocDefendantResponse}},
	{state: claim.StateReferredToCourt, viewer: ViewerDefendant, when: hearing, key: "referredToCourt.hearingRequirements", docs: []DocumentRef{DocHearingRequirements}},
	{state: claim.StateReferredToCourt, viewer: ViewerDefendant, key: "referredToCourt", deadline: questionnaireDeadline},
}
