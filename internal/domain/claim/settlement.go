package claim

import "time"

// SettlementEventKind is one step of an out-of-court settlement exchange.
type SettlementEventKind string

const (
	SettlementOffer   SettlementEventKind = "OFFER"
	SettlementAccept  SettlementEventKind = "ACCEPT"
	SettlementReject  SettlementEventKind = "REJECT"
	SettlementCounter SettlementEventKind = "COUNTER"
)

// IsValid reports whether k is a known settlement event kind.
func (k SettlementEventKind) IsValid() bool {
	switch k {
	case SettlementOffer, SettlementAccept, SettlementReject, SettlementCounter:
		return true
	}
	return false
}

// SettlementEvent is a single entry in the settlement sequence. SignedAt is
// set when the actor signed the agreement with this event.
type SettlementEvent struct {
	Kind       SettlementEventKind `json:"kind" yaml:"kind"`
	Actor      Party               `json:"actor" yaml:"actor"`
	OccurredAt *time.Time          `json:"occurred_at,omitempty" yaml:"occurred_at,omitempty"`
	SignedAt   *time.Time          `json:"signed_at,omitempty" yaml:"signed_at,omitempty"`
}

// SettlementStage summarises where a settlement exchange stands.
type SettlementStage string

const (
	SettlementStageNone     SettlementStage = "NONE"
	SettlementStageOffered  SettlementStage = "OFFERED"
	SettlementStageAccepted SettlementStage = "ACCEPTED"
	SettlementStageRejected SettlementStage = "REJECTED"
	SettlementStageAgreed   SettlementStage = "AGREED"
)

// Settlement is the append-only, occurrence-ordered settlement sequence.
type Settlement []SettlementEvent

// agreementIndex returns the index of the event that completed the
// agreement (the second party's signature), or -1.
func (s Settlement) agreementIndex() int {
	var claimantSigned, defendantSigned bool
	for i, e := range s {
		if e.SignedAt == nil {
			continue
		}
		switch e.Actor {
		case PartyClaimant:
			claimantSigned = true
		case PartyDefendant:
			defendantSigned = true
		}
		if claimantSigned && defendantSigned {
			return i
		}
	}
	return -1
}

// AgreementMade reports whether both parties have a signing event.
func (s Settlement) AgreementMade() bool {
	return s.agreementIndex() >= 0
}

// Stage reports the stage of the exchange. The latest event decides: an
// offer or counter-offer leaves it OFFERED, an accept leaves it ACCEPTED until
// the other party countersigns, a reject leaves it REJECTED.
func (s Settlement) Stage() SettlementStage {
	if len(s) == 0 {
		return SettlementStageNone
	}
	if s.AgreementMade() {
		return SettlementStageAgreed
	}
	switch s[len(s)-1].Kind {
	case SettlementAccept:
		return SettlementStageAccepted
	case SettlementReject:
		return SettlementStageRejected
	default:
		return SettlementStageOffered
	}
}
