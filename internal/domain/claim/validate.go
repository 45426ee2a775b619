package claim

import (
	"fmt"

	"github.com/turtacn/claimtrack/pkg/errors"
)

// Names of the record invariants reported in InvalidRecordError.
const (
	RuleMissingIdentity                 = "missing identity"
	RuleMissingDates                    = "missing issue or response dates"
	RuleClaimantResponseWithoutResponse = "claimant response without response"
	RuleOfflineAndPaper                 = "proceed offline and paper response both set"
	RuleDeadlineBeforeIssue             = "deadline earlier than issue date"
	RuleUnknownVariant                  = "unknown variant"
	RuleDefenceTypeMismatch             = "defence type does not match response kind"
	RuleSettlementOutOfOrder            = "settlement events out of order"
	RuleSettlementAfterAgreement        = "settlement event after agreement"
)

// Validate checks r against the record invariants and returns an
// InvalidRecordError (errors.ErrCodeInvalidRecord) for the first violation.
// It never repairs the record.
func Validate(r *Record) error {
	if r == nil {
		return errors.InvalidRecord(RuleMissingIdentity, "record is nil")
	}
	detail := func(format string, args ...interface{}) string {
		return fmt.Sprintf("external_id=%s ", r.ExternalID) + fmt.Sprintf(format, args...)
	}

	if r.ExternalID == "" {
		return errors.InvalidRecord(RuleMissingIdentity, "external_id is empty")
	}
	if r.IssuedDate.IsZero() || r.ResponseDeadline.IsZero() {
		return errors.InvalidRecord(RuleMissingDates, detail("issued_date=%s response_deadline=%s", r.IssuedDate, r.ResponseDeadline))
	}

	if r.ClaimantResponse != nil && r.Response == nil {
		return errors.InvalidRecord(RuleClaimantResponseWithoutResponse, detail("claimant_response.kind=%s", r.ClaimantResponse.Kind))
	}
	if r.ProceedOfflineReason != "" && r.PaperResponse {
		return errors.InvalidRecord(RuleOfflineAndPaper, detail("proceed_offline_reason=%s", r.ProceedOfflineReason))
	}

	deadlines := []struct {
		name string
		d    *Date
	}{
		{"response_deadline", &r.ResponseDeadline},
		{"intention_to_proceed_deadline", r.IntentionToProceedDeadline},
		{"directions_questionnaire_deadline", r.DirectionsQuestionnaireDeadline},
	}
	for _, dl := range deadlines {
		if dl.d != nil && dl.d.Before(r.IssuedDate) {
			return errors.InvalidRecord(RuleDeadlineBeforeIssue, detail("%s=%s issued_date=%s", dl.name, *dl.d, r.IssuedDate))
		}
	}

	if err := validateVariants(r, detail); err != nil {
		return err
	}
	return validateSettlement(r.Settlement, detail)
}

func validateVariants(r *Record, detail func(string, ...interface{}) string) error {
	if resp := r.Response; resp != nil {
		if !resp.Kind.IsValid() {
			return errors.InvalidRecord(RuleUnknownVariant, detail("response.kind=%q", resp.Kind))
		}
		if !resp.FreeMediation.IsValid() {
			return errors.InvalidRecord(RuleUnknownVariant, detail("response.free_mediation=%q", resp.FreeMediation))
		}
		switch {
		case resp.Kind == ResponseFullDefence && !resp.DefenceType.IsValid():
			return errors.InvalidRecord(RuleDefenceTypeMismatch, detail("kind=%s defence_type=%q", resp.Kind, resp.DefenceType))
		case resp.Kind != ResponseFullDefence && resp.DefenceType != "":
			return errors.InvalidRecord(RuleDefenceTypeMismatch, detail("kind=%s defence_type=%q", resp.Kind, resp.DefenceType))
		}
	}
	if cr := r.ClaimantResponse; cr != nil {
		if !cr.Kind.IsValid() {
			return errors.InvalidRecord(RuleUnknownVariant, detail("claimant_response.kind=%q", cr.Kind))
		}
		if !cr.FreeMediation.IsValid() || !cr.SettleForAmount.IsValid() {
			return errors.InvalidRecord(RuleUnknownVariant, detail("claimant_response yes/no field"))
		}
	}
	if !r.MediationOutcome.IsValid() {
		return errors.InvalidRecord(RuleUnknownVariant, detail("mediation_outcome=%q", r.MediationOutcome))
	}
	return nil
}

func validateSettlement(s Settlement, detail func(string, ...interface{}) string) error {
	for i, e := range s {
		if !e.Kind.IsValid() || !e.Actor.IsValid() {
			return errors.InvalidRecord(RuleUnknownVariant, detail("settlement[%d] kind=%q actor=%q", i, e.Kind, e.Actor))
		}
		if i > 0 && e.OccurredAt != nil && s[i-1].OccurredAt != nil && e.OccurredAt.Before(*s[i-1].OccurredAt) {
			return errors.InvalidRecord(RuleSettlementOutOfOrder, detail("settlement[%d] precedes settlement[%d]", i, i-1))
		}
	}
	if idx := s.agreementIndex(); idx >= 0 && idx < len(s)-1 {
		return errors.InvalidRecord(RuleSettlementAfterAgreement, detail("agreement completed at settlement[%d] of %d", idx, len(s)))
	}
	return nil
}
