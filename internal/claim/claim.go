package claim

import (
	"github.com/tseretelitornike/payout-bot/internal/extract"
)

// Cause is the category of disruption a claim is filed for. It decides
// which extracted fields are mandatory before the claim is complete.
type Cause string

const (
	// CauseDelayed covers trains that ran late.
	CauseDelayed Cause = "delayed"
	// CauseCancelled covers trains that never ran and trips the user
	// abandoned as a result.
	CauseCancelled Cause = "cancelled"
	// CauseReplacement covers trips completed on a different train
	// after a cancellation.
	CauseReplacement Cause = "replacement"
)

// Claim is the assembled refund-request record handed to the form
// collaborator. Read-only once assembled.
type Claim struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id"`
	Cause     Cause             `json:"cause"`
	Fields    map[string]string `json:"fields"`
	Missing   []string          `json:"missing_fields,omitempty"`
	Complete  bool              `json:"complete"`
}

// MandatoryFields returns the fields a cause requires before the claim
// counts as complete. The cancelled path never runs extraction against
// the ticket, so its claims always come out incomplete with the ticket
// identity fields listed as missing.
func MandatoryFields(cause Cause) []string {
	switch cause {
	case CauseDelayed:
		return []string{
			extract.FieldTrainNumber,
			extract.FieldDepartureStation,
			extract.FieldScheduledTime,
			extract.FieldDelayMinutes,
		}
	case CauseReplacement:
		return []string{
			extract.FieldTrainNumber,
			extract.FieldDepartureStation,
			extract.FieldScheduledTime,
		}
	case CauseCancelled:
		return []string{
			extract.FieldTrainNumber,
			extract.FieldDepartureStation,
		}
	default:
		return nil
	}
}
