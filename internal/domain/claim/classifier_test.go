package claim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/testutil"
	"github.com/turtacn/claimtrack/pkg/errors"
)

func newClassifier() *claim.Classifier {
	return claim.NewClassifier(testutil.Evaluator())
}

func TestClassify_EveryStateIsReachable(t *testing.T) {
	c := newClassifier()
	records := testutil.MinimalRecords()

	for _, state := range claim.States() {
		t.Run(state.String(), func(t *testing.T) {
			r, ok := records[state]
			require.True(t, ok, "no minimal record for %s", state)

			got, err := c.Classify(r, testutil.Now)
			require.NoError(t, err)
			assert.Equal(t, state, got)
		})
	}
}

func TestClassify_MinimalRecordsHitTheirOwnRule(t *testing.T) {
	c := newClassifier()
	owner := map[claim.State]int{}
	for _, info := range c.Rules() {
		for _, s := range info.States {
			owner[s] = info.Priority
		}
	}

	for state, r := range testutil.MinimalRecords() {
		res, err := c.Explain(r, testutil.Now)
		require.NoError(t, err)
		assert.Equal(t, owner[state], res.Priority, "state %s", state)
		assert.NotEmpty(t, res.Rule)
	}
}

func TestRules_CoverEveryStateOnce(t *testing.T) {
	rules := newClassifier().Rules()
	require.Len(t, rules, 12)

	seen := map[claim.State]bool{}
	for i, info := range rules {
		assert.Equal(t, i+1, info.Priority)
		for _, s := range info.States {
			assert.False(t, seen[s], "state %s produced by two rules", s)
			seen[s] = true
		}
	}
	assert.Len(t, seen, len(claim.States()))
}

func TestClassify_Precedence(t *testing.T) {
	c := newClassifier()

	cases := []struct {
		name   string
		record *claim.Record
		want   claim.State
	}{
		{
			"breathing space suppresses offline",
			testutil.NewRecord(testutil.WithBreathingSpace(false), testutil.WithProceedOffline(claim.OfflineApplicationByClaimant)),
			claim.StateBreathingSpaceActive,
		},
		{
			"lifted breathing space classifies normally",
			testutil.NewRecord(testutil.WithBreathingSpace(true), testutil.WithResponseDeadline(testutil.PastDate)),
			claim.StateResponsePastDeadline,
		},
		{
			"offline beats settlement agreement",
			testutil.NewRecord(
				testutil.WithDisputeDefence(claim.No),
				testutil.WithProceedOffline(claim.OfflineOther),
				testutil.WithSettlement(testutil.Accept(claim.PartyClaimant, true), testutil.Countersign(claim.PartyDefendant)),
			),
			claim.StateMovedOffline,
		},
		{
			"agreement beats lapsed directions questionnaire deadline",
			testutil.NewRecord(
				testutil.WithDisputeDefence(claim.No),
				testutil.WithClaimantResponse(claim.ClaimantRejection, claim.No),
				testutil.WithDirectionsQuestionnaireDeadline(testutil.PastDate),
				testutil.WithSettlement(testutil.Offer(claim.PartyDefendant), testutil.Accept(claim.PartyClaimant, true), testutil.Countersign(claim.PartyDefendant)),
			),
			claim.StateSettledWithAgreement,
		},
		{
			"agreement beats missing response",
			testutil.NewRecord(
				testutil.WithResponseDeadline(testutil.PastDate),
				testutil.WithSettlement(testutil.Accept(claim.PartyClaimant, true), testutil.Countersign(claim.PartyDefendant)),
			),
			claim.StateSettledWithAgreement,
		},
		{
			"future intention to proceed deadline keeps waiting",
			testutil.NewRecord(testutil.WithDisputeDefence(claim.Yes), testutil.WithIntentionToProceedDeadline(testutil.FutureDate)),
			claim.StateAwaitingClaimantDecision,
		},
		{
			"one-sided mediation goes to court",
			testutil.NewRecord(
				testutil.WithDisputeDefence(claim.Yes),
				testutil.WithClaimantResponse(claim.ClaimantRejection, claim.No),
				testutil.WithMediationOutcome(claim.MediationFailed),
			),
			claim.StateReferredToCourt,
		},
		{
			"mutual mediation beats settlement activity",
			testutil.NewRecord(
				testutil.WithDisputeDefence(claim.Yes),
				testutil.WithClaimantResponse(claim.ClaimantRejection, claim.Yes),
				testutil.WithSettlement(testutil.Offer(claim.PartyDefendant)),
			),
			claim.StateMediationPending,
		},
		{
			"counter offer after rejection reopens the offer",
			testutil.NewRecord(
				testutil.WithDisputeDefence(claim.No),
				testutil.WithClaimantResponse(claim.ClaimantRejection, claim.No),
				testutil.WithSettlement(testutil.Offer(claim.PartyDefendant), testutil.Reject(claim.PartyClaimant), claim.SettlementEvent{
					Kind: claim.SettlementCounter, Actor: claim.PartyDefendant,
				}),
			),
			claim.StateSettlementOfferPending,
		},
		{
			"admission accepted ends the claim",
			testutil.NewRecord(testutil.WithAdmission(claim.ResponseFullAdmission), testutil.WithClaimantResponse(claim.ClaimantAcceptation, claim.No)),
			claim.StateClaimWithdrawn,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(tc.record, testutil.Now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_ResponseDeadlineBoundary(t *testing.T) {
	c := newClassifier()
	deadline := claim.NewDate(2024, 3, 14)
	r := testutil.NewRecord(testutil.WithResponseDeadline(deadline))

	before := time.Date(2024, 3, 14, 15, 59, 0, 0, testutil.London)
	after := time.Date(2024, 3, 14, 16, 1, 0, 0, testutil.London)

	got, err := c.Classify(r, before)
	require.NoError(t, err)
	assert.Equal(t, claim.StateAwaitingResponse, got)

	got, err = c.Classify(r, after)
	require.NoError(t, err)
	assert.Equal(t, claim.StateResponsePastDeadline, got)
}

func TestClassify_InvalidRecordFailsFast(t *testing.T) {
	c := newClassifier()

	_, err := c.Classify(testutil.NewRecord(testutil.WithProceedOffline(claim.OfflineApplicationByClaimant), testutil.WithPaperResponse()), testutil.Now)
	assert.True(t, errors.IsInvalidRecord(err))

	// Breathing space does not excuse an invalid record.
	_, err = c.Classify(testutil.NewRecord(
		testutil.WithBreathingSpace(false),
		testutil.WithClaimantResponse(claim.ClaimantAcceptation, claim.No),
	), testutil.Now)
	assert.True(t, errors.IsInvalidRecord(err))
}

func TestClassify_IsDeterministic(t *testing.T) {
	c := newClassifier()
	for state, r := range testutil.MinimalRecords() {
		first, err1 := c.Classify(r, testutil.Now)
		second, err2 := c.Classify(r, testutil.Now)
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, first, second, "state %s", state)
	}
}

func TestClassify_DoesNotMutateRecord(t *testing.T) {
	c := newClassifier()
	r := testutil.MinimalRecords()[claim.StateSettlementRejected]
	before := *r
	beforeSettlement := append(claim.Settlement{}, r.Settlement...)

	_, err := c.Classify(r, testutil.Now)
	require.NoError(t, err)
	assert.Equal(t, before, *r)
	assert.Equal(t, beforeSettlement, r.Settlement)
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixture scenarios
// ─────────────────────────────────────────────────────────────────────────────

func TestClassify_Scenarios(t *testing.T) {
	c := newClassifier()

	t.Run("already paid, claimant did not proceed in time", func(t *testing.T) {
		r := testutil.NewRecord(testutil.WithAlreadyPaidDefence(claim.No), testutil.WithIntentionToProceedDeadline(testutil.PastDate))
		got, err := c.Classify(r, testutil.Now)
		require.NoError(t, err)
		assert.Equal(t, claim.StateEligibleForCourtDecision, got)
	})

	t.Run("already paid, mediation failed", func(t *testing.T) {
		r := testutil.NewRecord(
			testutil.WithAlreadyPaidDefence(claim.Yes),
			testutil.WithClaimantResponse(claim.ClaimantRejection, claim.Yes),
			testutil.WithMediationOutcome(claim.MediationFailed),
		)
		got, err := c.Classify(r, testutil.Now)
		require.NoError(t, err)
		assert.Equal(t, claim.StateMediationFailed, got)
	})

	t.Run("dispute rejected without mediation, offer outstanding", func(t *testing.T) {
		r := testutil.NewRecord(
			testutil.WithDisputeDefence(claim.No),
			testutil.WithClaimantResponse(claim.ClaimantRejection, claim.No),
			testutil.WithSettlement(testutil.Offer(claim.PartyDefendant)),
		)
		got, err := c.Classify(r, testutil.Now)
		require.NoError(t, err)
		assert.Equal(t, claim.StateSettlementOfferPending, got)
	})

	t.Run("acceptation ignores mediation and settlement", func(t *testing.T) {
		r := testutil.NewRecord(
			testutil.WithDisputeDefence(claim.Yes),
			testutil.WithClaimantResponse(claim.ClaimantAcceptation, claim.Yes),
			testutil.WithMediationOutcome(claim.MediationFailed),
			testutil.WithSettlement(testutil.Offer(claim.PartyDefendant), testutil.Reject(claim.PartyClaimant)),
		)
		got, err := c.Classify(r, testutil.Now)
		require.NoError(t, err)
		assert.Equal(t, claim.StateClaimWithdrawn, got)
	})

	t.Run("paper response overrides everything below it", func(t *testing.T) {
		r := testutil.NewRecord(
			testutil.WithPaperResponse(),
			testutil.WithDisputeDefence(claim.Yes),
			testutil.WithClaimantResponse(claim.ClaimantRejection, claim.Yes),
			testutil.WithMediationOutcome(claim.MediationSucceeded),
			testutil.WithSettlement(testutil.Offer(claim.PartyDefendant), testutil.Accept(claim.PartyClaimant, true), testutil.Countersign(claim.PartyDefendant)),
		)
		got, err := c.Classify(r, testutil.Now)
		require.NoError(t, err)
		assert.Equal(t, claim.StatePaperResponse, got)
	})
}

func TestState_Helpers(t *testing.T) {
	assert.True(t, claim.StateClaimWithdrawn.IsTerminal())
	assert.True(t, claim.StateSettledWithAgreement.IsTerminal())
	assert.True(t, claim.StateMediationSucceeded.IsTerminal())
	assert.False(t, claim.StateMediationPending.IsTerminal())
	assert.False(t, claim.State("UNKNOWN").IsValid())

	s, err := claim.ParseState(" mediation_failed ")
	require.NoError(t, err)
	assert.Equal(t, claim.StateMediationFailed, s)

	_, err = claim.ParseState("LOST")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestSettlement_Stage(t *testing.T) {
	cases := []struct {
		name   string
		events claim.Settlement
		want   claim.SettlementStage
	}{
		{"empty", nil, claim.SettlementStageNone},
		{"offer", claim.Settlement{testutil.Offer(claim.PartyDefendant)}, claim.SettlementStageOffered},
		{"accepted unsigned", claim.Settlement{testutil.Offer(claim.PartyDefendant), testutil.Accept(claim.PartyClaimant, false)}, claim.SettlementStageAccepted},
		{"rejected", claim.Settlement{testutil.Offer(claim.PartyDefendant), testutil.Reject(claim.PartyClaimant)}, claim.SettlementStageRejected},
		{"agreed", claim.Settlement{testutil.Accept(claim.PartyClaimant, true), testutil.Countersign(claim.PartyDefendant)}, claim.SettlementStageAgreed},
		{"one party signed twice", claim.Settlement{testutil.Accept(claim.PartyClaimant, true), testutil.Accept(claim.PartyClaimant, true)}, claim.SettlementStageAccepted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.events.Stage())
			assert.Equal(t, tc.want == claim.SettlementStageAgreed, tc.events.AgreementMade())
		})
	}
}
