package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TicketPatterns is the extraction table for German rail tickets and
// delay notifications. OCR output for these tickets mixes German and
// English labels, so every field carries both spellings. Expression
// order per field is the preference order: label-anchored expressions
// come before bare format-anchored fallbacks.
func TicketPatterns() []Pattern {
	return []Pattern{
		{FieldTrainNumber, NewRegexMatcher(normalizeTrainNumber,
			`(?i)\b(?:zug|train)\b\s*(?:no\.?|nr\.?|number)?\s*:?\s*((?:ICE|IC|EC|EN|RE|RB|S)?\s?\d{1,5})\b`,
			`\b((?:ICE|IC|EC|EN|RE|RB)\s?\d{1,5})\b`,
		)},
		{FieldDate, NewRegexMatcher(normalizeDate,
			`(?i)\b(?:datum|date|am)\s*:?\s*(\d{1,2}\.\d{1,2}\.\d{2,4}|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})`,
			`\b(\d{1,2}\.\d{1,2}\.\d{4})\b`,
			`\b(\d{4}-\d{2}-\d{2})\b`,
		)},
		{FieldDepartureStation, NewRegexMatcher(normalizeStation,
			`(?i)\bdeparting\s+([\p{Lu}][\p{L}.\- ]*?)(?:\s+at)?\s+\d{1,2}[:.]\d{2}`,
			`(?im)\b(?:von|from|ab)\s*:\s*([\p{Lu}][\p{L}.\- ]*?)(?:\s+\d{1,2}[:.]\d{2}|\s*$)`,
			`(?im)^\s*(?:von|from)\s+([\p{Lu}][\p{L}.\- ]+?)\s*$`,
		)},
		{FieldArrivalStation, NewRegexMatcher(normalizeStation,
			`(?im)\b(?:nach|arriving(?:\s+(?:at|in))?)\s*:?\s+([\p{Lu}][\p{L}.\- ]*?)(?:\s+\d{1,2}[:.]\d{2}|\s*$)`,
			`(?i)\bto\s+([\p{Lu}][\p{L}.\- ]+?)\b`,
		)},
		{FieldScheduledTime, NewRegexMatcher(normalizeClock,
			`(?i)\b(?:abfahrt|ab|dep(?:arture)?\.?)\s*:?\s*(\d{1,2}[:.]\d{2})\b`,
			`\b(\d{1,2}:\d{2})\b`,
		)},
		{FieldDelayMinutes, NewRegexMatcher(normalizeMinutes,
			`(?i)\bdelay(?:ed)?\b\s*(?:by\s*)?:?\s*(\d{1,4})\s*min`,
			`(?i)versp[äa]tung\s*:?\s*(?:ca\.?\s*)?(\d{1,4})\s*min`,
			`\+\s*(\d{1,4})\s*min`,
		)},
	}
}

// dateLayouts are tried in order; German tickets are day-first.
var dateLayouts = []string{
	"02.01.2006",
	"02.01.06",
	"2006-01-02",
	"02/01/2006",
}

func normalizeDate(capture string) (string, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, capture); err == nil {
			return d.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", capture)
}

func normalizeClock(capture string) (string, error) {
	capture = strings.ReplaceAll(capture, ".", ":")
	t, err := time.Parse("15:04", capture)
	if err != nil {
		return "", fmt.Errorf("unparseable time %q", capture)
	}
	return t.Format("15:04"), nil
}

func normalizeMinutes(capture string) (string, error) {
	n, err := strconv.Atoi(capture)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid delay %q", capture)
	}
	return strconv.Itoa(n), nil
}

var spaceRun = regexp.MustCompile(`\s+`)

func normalizeTrainNumber(capture string) (string, error) {
	capture = strings.ToUpper(spaceRun.ReplaceAllString(strings.TrimSpace(capture), " "))
	if capture == "" {
		return "", fmt.Errorf("empty train number")
	}
	return capture, nil
}

func normalizeStation(capture string) (string, error) {
	capture = strings.TrimRight(strings.TrimSpace(capture), ".,;:-")
	capture = spaceRun.ReplaceAllString(capture, " ")
	if capture == "" {
		return "", fmt.Errorf("empty station name")
	}
	return capture, nil
}
