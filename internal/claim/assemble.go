package claim

import (
	"sort"

	"github.com/tseretelitornike/payout-bot/internal/extract"
)

// Context carries the session identity a claim is assembled under. The
// claim ID is supplied by the caller so that assembly stays a pure data
// transformation.
type Context struct {
	ClaimID   string
	SessionID string
	UserID    string
}

// Assemble merges extracted fields into a claim for the given cause.
// Only matched fields are carried over; mandatory fields without a
// match are recorded in Missing and leave the claim incomplete.
// Assemble performs no I/O and is idempotent: identical inputs always
// produce an identical Claim.
func Assemble(cause Cause, fields map[string]extract.ExtractedField, ctx Context) Claim {
	c := Claim{
		ID:        ctx.ClaimID,
		SessionID: ctx.SessionID,
		UserID:    ctx.UserID,
		Cause:     cause,
		Fields:    make(map[string]string, len(fields)),
	}

	for name, field := range fields {
		if field.Matched {
			c.Fields[name] = field.Value
		}
	}

	for _, name := range MandatoryFields(cause) {
		if _, ok := c.Fields[name]; !ok {
			c.Missing = append(c.Missing, name)
		}
	}
	sort.Strings(c.Missing)
	c.Complete = len(c.Missing) == 0

	return c
}
