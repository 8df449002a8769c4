package extract

import (
	"log/slog"
	"regexp"
	"strings"
)

// Field names form the controlled vocabulary shared with the claim
// assembler. Values are the keys of every extraction result.
const (
	FieldTrainNumber      = "train_number"
	FieldDate             = "date"
	FieldDepartureStation = "departure_station"
	FieldArrivalStation   = "arrival_station"
	FieldScheduledTime    = "scheduled_time"
	FieldDelayMinutes     = "delay_minutes"
)

// ExtractedField is the result of matching one field against an OCR
// text blob. Immutable once produced.
type ExtractedField struct {
	Name    string `json:"name"`
	RawText string `json:"raw_text,omitempty"`
	Value   string `json:"value,omitempty"`
	Matched bool   `json:"matched"`
}

// Matcher matches a single field against a full OCR text blob. A
// Matcher must be safe for concurrent use and must not modify the text.
type Matcher interface {
	// Match returns the raw substring that matched, the normalized
	// value, and whether the field was found.
	Match(text string) (raw, value string, ok bool)
}

// Pattern binds a field name to its matcher.
type Pattern struct {
	Field   string
	Matcher Matcher
}

// Extract runs every pattern against the text and returns one
// ExtractedField per pattern, keyed by field name. Unmatched fields are
// present with Matched=false. The result is deterministic for a given
// (text, patterns) pair, and a misbehaving matcher degrades to an
// unmatched field instead of taking the conversation down.
func Extract(text string, patterns []Pattern) map[string]ExtractedField {
	out := make(map[string]ExtractedField, len(patterns))
	for _, p := range patterns {
		out[p.Field] = matchField(text, p)
	}
	return out
}

func matchField(text string, p Pattern) (field ExtractedField) {
	field = ExtractedField{Name: p.Field}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Field matcher panicked", "field", p.Field, "panic", r)
			field = ExtractedField{Name: p.Field}
		}
	}()

	raw, value, ok := p.Matcher.Match(text)
	if !ok {
		return field
	}
	field.RawText = raw
	field.Value = value
	field.Matched = true
	return field
}

// NormalizeFunc turns a captured substring into the field's canonical
// value. Returning an error rejects the capture and moves on to the
// next expression.
type NormalizeFunc func(capture string) (string, error)

// RegexMatcher matches a field with an ordered list of regular
// expressions. The first expression that yields a normalizable capture
// wins; later expressions act as fallbacks, so the list order encodes
// the field's preference order for ambiguous text.
type RegexMatcher struct {
	exprs     []*regexp.Regexp
	normalize NormalizeFunc
}

// NewRegexMatcher compiles the expressions in preference order. Each
// expression should capture the field value in group 1; expressions
// without a capture group use the whole match. Panics on an invalid
// expression, matching regexp.MustCompile semantics: pattern tables are
// package-level constants, not user input.
func NewRegexMatcher(normalize NormalizeFunc, exprs ...string) *RegexMatcher {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(expr))
	}
	return &RegexMatcher{exprs: compiled, normalize: normalize}
}

// Match tries each expression in order against the full text.
func (m *RegexMatcher) Match(text string) (string, string, bool) {
	for _, re := range m.exprs {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		raw := sub[0]
		value := sub[0]
		if len(sub) > 1 {
			value = sub[1]
		}
		value = strings.TrimSpace(value)
		if m.normalize != nil {
			normalized, err := m.normalize(value)
			if err != nil {
				continue
			}
			value = normalized
		}
		return raw, value, true
	}
	return "", "", false
}
