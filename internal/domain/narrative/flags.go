package narrative

import (
	"fmt"

	"github.com/turtacn/claimtrack/internal/domain/claim"
)

// DefenceFlavour groups responses by how narratives talk about them.
type DefenceFlavour string

const (
	DefenceNone        DefenceFlavour = "NONE"
	DefenceDispute     DefenceFlavour = "DISPUTE"
	DefenceAlreadyPaid DefenceFlavour = "ALREADY_PAID"
	DefenceAdmission   DefenceFlavour = "ADMISSION"
)

// OfflineApplicant says who took the claim out of the online process.
type OfflineApplicant string

const (
	OfflineNone      OfflineApplicant = "NONE"
	OfflineClaimant  OfflineApplicant = "CLAIMANT"
	OfflineDefendant OfflineApplicant = "DEFENDANT"
	OfflineOther     OfflineApplicant = "OTHER"
)

// Flags are the record facts that split one state into several narratives.
type Flags struct {
	Defence             DefenceFlavour
	DefendantMediation  bool
	HearingRequirements bool
	Settlement          claim.SettlementStage
	OfflineBy           OfflineApplicant
	MoreTimeRequested   bool
}

// FlagsOf reads the sub-flags off r.
func FlagsOf(r *claim.Record) Flags {
	f := Flags{
		Defence:             DefenceNone,
		HearingRequirements: r.HearingRequirementsAvailable(),
		Settlement:          r.Settlement.Stage(),
		OfflineBy:           OfflineNone,
		MoreTimeRequested:   r.MoreTimeRequested,
	}
	if resp := r.Response; resp != nil {
		f.DefendantMediation = resp.FreeMediation.IsYes()
		switch {
		case resp.IsAlreadyPaidDefence():
			f.Defence = DefenceAlreadyPaid
		case resp.Kind == claim.ResponseFullDefence:
			f.Defence = DefenceDispute
		default:
			f.Defence = DefenceAdmission
		}
	}
	switch r.ProceedOfflineReason {
	case "":
	case claim.OfflineApplicationByClaimant:
		f.OfflineBy = OfflineClaimant
	case claim.OfflineApplicationByDefendant:
		f.OfflineBy = OfflineDefendant
	default:
		f.OfflineBy = OfflineOther
	}
	return f
}

func (f Flags) String() string {
	return fmt.Sprintf("defence=%s mediation=%t hearing=%t settlement=%s offline=%s more_time=%t",
		f.Defence, f.DefendantMediation, f.HearingRequirements, f.Settlement, f.OfflineBy, f.MoreTimeRequested)
}

// tri is a three-valued match on a boolean flag; the zero value matches both.
type tri uint8

const (
	anyValue tri = iota
	yes
	no
)

func (t tri) admits(v bool) bool {
	switch t {
	case yes:
		return v
	case no:
		return !v
	default:
		return true
	}
}

// match is a pattern over Flags. Zero-valued fields match anything.
type match struct {
	defence    DefenceFlavour
	mediation  tri
	hearing    tri
	settlement claim.SettlementStage
	offlineBy  OfflineApplicant
	moreTime   tri
}

func (m match) admits(f Flags) bool {
	return (m.defence == "" || m.defence == f.Defence) &&
		m.mediation.admits(f.DefendantMediation) &&
		m.hearing.admits(f.HearingRequirements) &&
		(m.settlement == "" || m.settlement == f.Settlement) &&
		(m.offlineBy == "" || m.offlineBy == f.OfflineBy) &&
		m.moreTime.admits(f.MoreTimeRequested)
}

// isCatchAll reports whether m matches every Flags value.
func (m match) isCatchAll() bool {
	return m == match{}
}
