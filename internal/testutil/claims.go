package testutil

import (
	"time"

	"github.com/turtacn/claimtrack/internal/domain/claim"
)

// Fixture names and dates shared by the claim, narrative and dashboard tests.
const (
	ClaimantName  = "John Smith"
	DefendantName = "Rose Smith"
	ExternalID    = "400f4c57-9684-49c0-adb4-4cf46579d6dc"
)

var (
	// London is the zone deadline cutoffs are read in.
	London = mustLoad("Europe/London")

	// Now is the reference instant: midday on Friday 15 March 2024, London.
	Now = time.Date(2024, time.March, 15, 12, 0, 0, 0, London)

	IssuedDate   = claim.NewDate(2024, time.January, 10)
	PastDate     = claim.NewDate(2024, time.March, 14)
	FutureDate   = claim.NewDate(2024, time.March, 28)
	RespondedAt  = time.Date(2024, time.February, 1, 10, 30, 0, 0, London)
	PaidDate     = claim.NewDate(2024, time.January, 5)
	PaidAmount   = claim.Money(3000)
	SettlementAt = time.Date(2024, time.March, 1, 9, 0, 0, 0, London)
)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Evaluator returns the London 16:00 deadline evaluator.
func Evaluator() claim.DeadlineEvaluator {
	return claim.NewDeadlineEvaluator(London)
}

// RecordOption mutates a fixture record.
type RecordOption func(*claim.Record)

// NewRecord returns an issued claim awaiting a response with a future
// deadline, with opts applied in order.
func NewRecord(opts ...RecordOption) *claim.Record {
	r := &claim.Record{
		ExternalID:       ExternalID,
		ClaimantName:     ClaimantName,
		DefendantName:    DefendantName,
		IssuedDate:       IssuedDate,
		ResponseDeadline: FutureDate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithResponseDeadline sets the response deadline.
func WithResponseDeadline(d claim.Date) RecordOption {
	return func(r *claim.Record) { r.ResponseDeadline = d }
}

// WithMoreTimeRequested marks that the defendant asked for more time.
func WithMoreTimeRequested() RecordOption {
	return func(r *claim.Record) { r.MoreTimeRequested = true }
}

// WithDisputeDefence adds an online full defence disputing the claim.
func WithDisputeDefence(mediation claim.YesNo) RecordOption {
	return func(r *claim.Record) {
		r.Response = &claim.Response{
			Kind:          claim.ResponseFullDefence,
			DefenceType:   claim.DefenceDispute,
			FreeMediation: mediation,
			Method:        claim.MethodOnline,
			RespondedAt:   RespondedAt,
		}
	}
}

// WithAlreadyPaidDefence adds a full defence stating PaidAmount was paid on PaidDate.
func WithAlreadyPaidDefence(mediation claim.YesNo) RecordOption {
	return func(r *claim.Record) {
		r.Response = &claim.Response{
			Kind:          claim.ResponseFullDefence,
			DefenceType:   claim.DefenceAlreadyPaid,
			FreeMediation: mediation,
			PaymentDeclaration: &claim.PaymentDeclaration{
				PaidAmount: PaidAmount,
				PaidDate:   PaidDate,
			},
			Method:      claim.MethodOnline,
			RespondedAt: RespondedAt,
		}
	}
}

// WithAdmission adds a full or part admission.
func WithAdmission(kind claim.ResponseKind) RecordOption {
	return func(r *claim.Record) {
		r.Response = &claim.Response{Kind: kind, FreeMediation: claim.No, Method: claim.MethodOnline, RespondedAt: RespondedAt}
	}
}

// WithOnlineDirectionsQuestionnaire attaches hearing requirements to the
// response and enables the directions questionnaire feature.
func WithOnlineDirectionsQuestionnaire() RecordOption {
	return func(r *claim.Record) {
		if r.Response != nil {
			r.Response.DirectionsQuestionnaire = &claim.DirectionsQuestionnaire{HearingLocation: "Central London County Court"}
		}
		r.Features = append(r.Features, claim.FeatureDirectionsQuestionnaire)
	}
}

// WithClaimantResponse adds the claimant's answer.
func WithClaimantResponse(kind claim.ClaimantResponseKind, mediation claim.YesNo) RecordOption {
	return func(r *claim.Record) {
		r.ClaimantResponse = &claim.ClaimantResponse{
			Kind:            kind,
			FreeMediation:   mediation,
			SettleForAmount: claim.No,
			RespondedAt:     RespondedAt.AddDate(0, 0, 14),
		}
	}
}

// WithIntentionToProceedDeadline sets the intention-to-proceed deadline.
func WithIntentionToProceedDeadline(d claim.Date) RecordOption {
	return func(r *claim.Record) { r.IntentionToProceedDeadline = &d }
}

// WithDirectionsQuestionnaireDeadline sets the directions questionnaire deadline.
func WithDirectionsQuestionnaireDeadline(d claim.Date) RecordOption {
	return func(r *claim.Record) { r.DirectionsQuestionnaireDeadline = &d }
}

// WithMediationOutcome sets the mediation outcome.
func WithMediationOutcome(o claim.MediationOutcome) RecordOption {
	return func(r *claim.Record) { r.MediationOutcome = o }
}

// WithSettlement replaces the settlement sequence.
func WithSettlement(events ...claim.SettlementEvent) RecordOption {
	return func(r *claim.Record) { r.Settlement = append(claim.Settlement{}, events...) }
}

// WithProceedOffline moves the claim offline for reason.
func WithProceedOffline(reason claim.ProceedOfflineReason) RecordOption {
	return func(r *claim.Record) { r.ProceedOfflineReason = reason }
}

// WithPaperResponse marks a paper response.
func WithPaperResponse() RecordOption {
	return func(r *claim.Record) { r.PaperResponse = true }
}

// WithBreathingSpace adds a breathing space, lifted or not.
func WithBreathingSpace(lifted bool) RecordOption {
	return func(r *claim.Record) {
		entered := claim.NewDate(2024, time.February, 20)
		bs := &claim.BreathingSpace{ReferenceNumber: "BS-1234567", EnteredDate: &entered, Lifted: lifted}
		if lifted {
			liftedOn := claim.NewDate(2024, time.March, 1)
			bs.LiftedDate = &liftedOn
		}
		r.BreathingSpace = bs
	}
}

// Offer is an unsigned offer made by actor.
func Offer(actor claim.Party) claim.SettlementEvent {
	at := SettlementAt
	return claim.SettlementEvent{Kind: claim.SettlementOffer, Actor: actor, OccurredAt: &at}
}

// Accept is an acceptance by actor, signed when signed is true.
func Accept(actor claim.Party, signed bool) claim.SettlementEvent {
	at := SettlementAt.Add(24 * time.Hour)
	e := claim.SettlementEvent{Kind: claim.SettlementAccept, Actor: actor, OccurredAt: &at}
	if signed {
		e.SignedAt = &at
	}
	return e
}

// Countersign is the second party's signing acceptance.
func Countersign(actor claim.Party) claim.SettlementEvent {
	at := SettlementAt.Add(48 * time.Hour)
	return claim.SettlementEvent{Kind: claim.SettlementAccept, Actor: actor, OccurredAt: &at, SignedAt: &at}
}

// Reject is a rejection by actor.
func Reject(actor claim.Party) claim.SettlementEvent {
	at := SettlementAt.Add(24 * time.Hour)
	return claim.SettlementEvent{Kind: claim.SettlementReject, Actor: actor, OccurredAt: &at}
}

// MinimalRecords returns, for every state, the smallest record that
// classifies to it at Now.
func MinimalRecords() map[claim.State]*claim.Record {
	rejected := func(mediation claim.YesNo) []RecordOption {
		return []RecordOption{
			WithDisputeDefence(mediation),
			WithClaimantResponse(claim.ClaimantRejection, mediation),
		}
	}
	with := func(base []RecordOption, more ...RecordOption) *claim.Record {
		return NewRecord(append(base, more...)...)
	}

	return map[claim.State]*claim.Record{
		claim.StateBreathingSpaceActive: NewRecord(WithBreathingSpace(false)),
		claim.StateMovedOffline:         NewRecord(WithProceedOffline(claim.OfflineApplicationByDefendant)),
		claim.StatePaperResponse:        NewRecord(WithPaperResponse()),
		claim.StateSettledWithAgreement: NewRecord(
			WithDisputeDefence(claim.No),
			WithSettlement(Offer(claim.PartyDefendant), Accept(claim.PartyClaimant, true), Countersign(claim.PartyDefendant)),
		),
		claim.StateResponsePastDeadline:     NewRecord(WithResponseDeadline(PastDate)),
		claim.StateAwaitingResponse:         NewRecord(),
		claim.StateEligibleForCourtDecision: NewRecord(WithDisputeDefence(claim.No), WithIntentionToProceedDeadline(PastDate)),
		claim.StateAwaitingClaimantDecision: NewRecord(WithDisputeDefence(claim.No)),
		claim.StateClaimWithdrawn: NewRecord(
			WithDisputeDefence(claim.No),
			WithClaimantResponse(claim.ClaimantAcceptation, claim.No),
		),
		claim.StateMediationFailed:    with(rejected(claim.Yes), WithMediationOutcome(claim.MediationFailed)),
		claim.StateMediationSucceeded: with(rejected(claim.Yes), WithMediationOutcome(claim.MediationSucceeded)),
		claim.StateMediationPending:   with(rejected(claim.Yes)),
		claim.StateSettlementOfferPending: with(rejected(claim.No),
			WithSettlement(Offer(claim.PartyDefendant))),
		claim.StateSettlementAcceptedAwaitingCountersignature: with(rejected(claim.No),
			WithSettlement(Offer(claim.PartyDefendant), Accept(claim.PartyClaimant, true))),
		claim.StateSettlementRejected: with(rejected(claim.No),
			WithSettlement(Offer(claim.PartyDefendant), Reject(claim.PartyClaimant))),
		claim.StateReferredToCourt: with(rejected(claim.No)),
	}
}
