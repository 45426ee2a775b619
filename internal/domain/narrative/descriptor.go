package narrative

import (
	"time"

	"github.com/turtacn/claimtrack/internal/domain/claim"
)

// DocumentRef names a document a narrative offers for download. The HTTP
// layer resolves refs to links; the selector only names them.
type DocumentRef string

const (
	DocClaimForm           DocumentRef = "CLAIM_FORM"
	DocDefendantResponse   DocumentRef = "DEFENDANT_RESPONSE"
	DocHearingRequirements DocumentRef = "HEARING_REQUIREMENTS"
	DocSettlementAgreement DocumentRef = "SETTLEMENT_AGREEMENT"
	DocMediationAgreement  DocumentRef = "MEDIATION_AGREEMENT"
)

// ResolvedDeadline is a deadline date together with the instant it lapses.
type ResolvedDeadline struct {
	Date   claim.Date `json:"date" yaml:"date"`
	Cutoff time.Time  `json:"cutoff" yaml:"cutoff"`
}

// Params are the structured values a renderer interpolates into a narrative.
// Unset values are omitted.
type Params struct {
	ClaimantName   string            `json:"claimant_name,omitempty" yaml:"claimant_name,omitempty"`
	DefendantName  string            `json:"defendant_name,omitempty" yaml:"defendant_name,omitempty"`
	OtherPartyName string            `json:"other_party_name,omitempty" yaml:"other_party_name,omitempty"`
	PaidAmount     *claim.Money      `json:"paid_amount,omitempty" yaml:"paid_amount,omitempty"`
	PaidDate       *claim.Date       `json:"paid_date,omitempty" yaml:"paid_date,omitempty"`
	RespondedOn    *claim.Date       `json:"responded_on,omitempty" yaml:"responded_on,omitempty"`
	Deadline       *ResolvedDeadline `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	PausedSince    *claim.Date       `json:"paused_since,omitempty" yaml:"paused_since,omitempty"`
	Documents      []DocumentRef     `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// Descriptor is a narrative selection: a message key and its parameters.
type Descriptor struct {
	Key    string `json:"key" yaml:"key"`
	Params Params `json:"params" yaml:"params"`
}
