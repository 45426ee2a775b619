// Package claim holds the money-claim record, the deadline rule and the state
// classifier that reduces a record to a single lifecycle state.
//
// A Record is read-only for the duration of classification. Optional
// sub-records are pointers (absent until the event that creates them has
// happened) and every enumerated field is a closed string type, so that the
// classifier's guards read as checks over a fixed set of variants.
package claim

import (
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// ResponseKind is the kind of answer the defendant gave.
type ResponseKind string

const (
	ResponseFullDefence   ResponseKind = "FULL_DEFENCE"
	ResponseFullAdmission ResponseKind = "FULL_ADMISSION"
	ResponsePartAdmission ResponseKind = "PART_ADMISSION"
)

// IsValid reports whether k is a known response kind.
func (k ResponseKind) IsValid() bool {
	switch k {
	case ResponseFullDefence, ResponseFullAdmission, ResponsePartAdmission:
		return true
	}
	return false
}

// DefenceType qualifies a FULL_DEFENCE response.
type DefenceType string

const (
	DefenceDispute     DefenceType = "DISPUTE"
	DefenceAlreadyPaid DefenceType = "ALREADY_PAID"
)

// IsValid reports whether t is a known defence type.
func (t DefenceType) IsValid() bool {
	return t == DefenceDispute || t == DefenceAlreadyPaid
}

// YesNo is a two-valued answer to a yes/no question on a form.
type YesNo string

const (
	Yes YesNo = "YES"
	No  YesNo = "NO"
)

// IsYes reports whether the answer was yes. An absent answer counts as no.
func (v YesNo) IsYes() bool { return v == Yes }

// IsValid reports whether v is empty or one of YES/NO.
func (v YesNo) IsValid() bool { return v == "" || v == Yes || v == No }

// ResponseMethod says how the defendant's response arrived.
type ResponseMethod string

const (
	MethodOnline  ResponseMethod = "ONLINE"
	MethodOffline ResponseMethod = "OFFLINE"
)

// ClaimantResponseKind is the claimant's answer to the defendant's response.
type ClaimantResponseKind string

const (
	ClaimantAcceptation ClaimantResponseKind = "ACCEPTATION"
	ClaimantRejection   ClaimantResponseKind = "REJECTION"
)

// IsValid reports whether k is a known claimant response kind.
func (k ClaimantResponseKind) IsValid() bool {
	return k == ClaimantAcceptation || k == ClaimantRejection
}

// MediationOutcome is the result of free mediation once both parties agreed to it.
type MediationOutcome string

const (
	MediationPending   MediationOutcome = "PENDING"
	MediationFailed    MediationOutcome = "FAILED"
	MediationSucceeded MediationOutcome = "SUCCEEDED"
)

// IsValid reports whether o is empty (never agreed) or a known outcome.
func (o MediationOutcome) IsValid() bool {
	switch o {
	case "", MediationPending, MediationFailed, MediationSucceeded:
		return true
	}
	return false
}

// Party identifies one side of the claim.
type Party string

const (
	PartyClaimant  Party = "CLAIMANT"
	PartyDefendant Party = "DEFENDANT"
)

// IsValid reports whether p is a known party.
func (p Party) IsValid() bool { return p == PartyClaimant || p == PartyDefendant }

// ProceedOfflineReason records why a claim left the online process.
type ProceedOfflineReason string

const (
	OfflineApplicationByClaimant  ProceedOfflineReason = "APPLICATION_BY_CLAIMANT"
	OfflineApplicationByDefendant ProceedOfflineReason = "APPLICATION_BY_DEFENDANT"
	OfflineOther                  ProceedOfflineReason = "OTHER"
)

// Feature is a capability flag supplied by the claim store.
type Feature string

// FeatureDirectionsQuestionnaire enables online directions questionnaires.
const FeatureDirectionsQuestionnaire Feature = "directionsQuestionnaire"

// Features is the set of capability flags enabled for a claim. An absent
// flag means the capability is disabled.
type Features []Feature

// Has reports whether f is enabled.
func (fs Features) Has(f Feature) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Sub-records
// ─────────────────────────────────────────────────────────────────────────────

// PaymentDeclaration is the defendant's statement that the claim was paid.
type PaymentDeclaration struct {
	PaidAmount  Money  `json:"paid_amount" yaml:"paid_amount"`
	PaidDate    Date   `json:"paid_date" yaml:"paid_date"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// DirectionsQuestionnaire is a hearing-requirements submission made online.
type DirectionsQuestionnaire struct {
	HearingLocation string     `json:"hearing_location,omitempty" yaml:"hearing_location,omitempty"`
	ExpertRequired  bool       `json:"expert_required,omitempty" yaml:"expert_required,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty" yaml:"submitted_at,omitempty"`
}

// Response is the defendant's answer to the claim.
type Response struct {
	Kind                    ResponseKind             `json:"kind" yaml:"kind"`
	DefenceType             DefenceType              `json:"defence_type,omitempty" yaml:"defence_type,omitempty"`
	FreeMediation           YesNo                    `json:"free_mediation,omitempty" yaml:"free_mediation,omitempty"`
	PaymentDeclaration      *PaymentDeclaration      `json:"payment_declaration,omitempty" yaml:"payment_declaration,omitempty"`
	DirectionsQuestionnaire *DirectionsQuestionnaire `json:"directions_questionnaire,omitempty" yaml:"directions_questionnaire,omitempty"`
	Method                  ResponseMethod           `json:"response_method,omitempty" yaml:"response_method,omitempty"`
	RespondedAt             time.Time                `json:"responded_at" yaml:"responded_at"`
}

// IsAlreadyPaidDefence reports whether the response is a full defence on the
// ground that the amount claimed was already paid.
func (r *Response) IsAlreadyPaidDefence() bool {
	return r != nil && r.Kind == ResponseFullDefence && r.DefenceType == DefenceAlreadyPaid
}

// HasOnlineDirectionsQuestionnaire reports whether hearing requirements were
// submitted online with the response.
func (r *Response) HasOnlineDirectionsQuestionnaire() bool {
	return r != nil && r.DirectionsQuestionnaire != nil && r.Method != MethodOffline
}

// ClaimantResponse is the claimant's answer to the defendant's response.
type ClaimantResponse struct {
	Kind            ClaimantResponseKind `json:"kind" yaml:"kind"`
	FreeMediation   YesNo                `json:"free_mediation,omitempty" yaml:"free_mediation,omitempty"`
	SettleForAmount YesNo                `json:"settle_for_amount,omitempty" yaml:"settle_for_amount,omitempty"`
	RespondedAt     time.Time            `json:"responded_at" yaml:"responded_at"`
}

// BreathingSpace is a statutory pause on debt-recovery action.
type BreathingSpace struct {
	ReferenceNumber string `json:"reference_number,omitempty" yaml:"reference_number,omitempty"`
	EnteredDate     *Date  `json:"entered_date,omitempty" yaml:"entered_date,omitempty"`
	Lifted          bool   `json:"lifted" yaml:"lifted"`
	LiftedDate      *Date  `json:"lifted_date,omitempty" yaml:"lifted_date,omitempty"`
}

// IsActive reports whether the pause currently applies.
func (b *BreathingSpace) IsActive() bool {
	return b != nil && !b.Lifted
}

// ─────────────────────────────────────────────────────────────────────────────
// Record
// ─────────────────────────────────────────────────────────────────────────────

// Record is everything known about one money claim. Only ExternalID, the
// party names, IssuedDate and ResponseDeadline are always present.
type Record struct {
	ExternalID    string `json:"external_id" yaml:"external_id"`
	ClaimantName  string `json:"claimant_name" yaml:"claimant_name"`
	DefendantName string `json:"defendant_name" yaml:"defendant_name"`

	IssuedDate        Date `json:"issued_date" yaml:"issued_date"`
	ResponseDeadline  Date `json:"response_deadline" yaml:"response_deadline"`
	MoreTimeRequested bool `json:"more_time_requested,omitempty" yaml:"more_time_requested,omitempty"`

	Response         *Response         `json:"response,omitempty" yaml:"response,omitempty"`
	ClaimantResponse *ClaimantResponse `json:"claimant_response,omitempty" yaml:"claimant_response,omitempty"`

	IntentionToProceedDeadline      *Date `json:"intention_to_proceed_deadline,omitempty" yaml:"intention_to_proceed_deadline,omitempty"`
	DirectionsQuestionnaireDeadline *Date `json:"directions_questionnaire_deadline,omitempty" yaml:"directions_questionnaire_deadline,omitempty"`

	MediationOutcome MediationOutcome `json:"mediation_outcome,omitempty" yaml:"mediation_outcome,omitempty"`
	Settlement       Settlement       `json:"settlement,omitempty" yaml:"settlement,omitempty"`

	ProceedOfflineReason ProceedOfflineReason `json:"proceed_offline_reason,omitempty" yaml:"proceed_offline_reason,omitempty"`
	PaperResponse        bool                 `json:"paper_response,omitempty" yaml:"paper_response,omitempty"`

	Features       Features        `json:"features,omitempty" yaml:"features,omitempty"`
	BreathingSpace *BreathingSpace `json:"breathing_space,omitempty" yaml:"breathing_space,omitempty"`
}

// MutualMediation reports whether both parties opted into free mediation.
func (r *Record) MutualMediation() bool {
	return r.Response != nil && r.ClaimantResponse != nil &&
		r.Response.FreeMediation.IsYes() && r.ClaimantResponse.FreeMediation.IsYes()
}

// HearingRequirementsAvailable reports whether the defendant's online hearing
// requirements can be shown: the feature is enabled and they were submitted.
func (r *Record) HearingRequirementsAvailable() bool {
	return r.Features.Has(FeatureDirectionsQuestionnaire) && r.Response.HasOnlineDirectionsQuestionnaire()
}

// PartyName returns the name of party p.
func (r *Record) PartyName(p Party) string {
	if p == PartyDefendant {
		return r.DefendantName
	}
	return r.ClaimantName
}
