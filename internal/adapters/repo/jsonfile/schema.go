package jsonfile

import (
	"encoding/json"
	"time"

	"github.com/aikawam/vcwatch/internal/domain"
)

type configDocument struct {
	DestChannelID json.RawMessage `json:"dest_channel_id"`
}

// parseDestination accepts a digits string, a bare integer (snowflakes are
// persisted as strings but older documents held numbers), or null.
func parseDestination(raw json.RawMessage) (domain.ChannelID, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if isDigits(asString) {
			return domain.ChannelID(asString), true
		}
		return "", false
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil && isDigits(asNumber.String()) {
		return domain.ChannelID(asNumber.String()), true
	}

	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func totalsToSeconds(totals domain.DailyTotals) map[string]float64 {
	doc := make(map[string]float64, len(totals))
	for member, total := range totals {
		doc[string(member)] = total.Seconds()
	}
	return doc
}

func totalsFromSeconds(doc map[string]float64) domain.DailyTotals {
	totals := make(domain.DailyTotals, len(doc))
	for member, seconds := range doc {
		if seconds < 0 {
			continue
		}
		totals[domain.MemberID(member)] = time.Duration(seconds * float64(time.Second))
	}
	return totals
}
