// Package dedupe partitions freshly discovered brokers against an
// existing customer list.
package dedupe

import (
	"strings"

	"github.com/sells-group/broker-finder/internal/model"
)

// Partition splits discovered brokers into duplicates of the existing
// records and genuinely new entries. A discovered broker is a duplicate
// when its name or address matches an existing record case-insensitively.
func Partition(discovered []model.EnrichedBroker, existing []model.ImportedBrokerRecord) (duplicates, fresh []model.EnrichedBroker) {
	names := make(map[string]bool, len(existing))
	addresses := make(map[string]bool, len(existing))
	for _, r := range existing {
		if key := normalizeKey(r.Name); key != "" {
			names[key] = true
		}
		if key := normalizeKey(r.Address); key != "" {
			addresses[key] = true
		}
	}

	for _, b := range discovered {
		if names[normalizeKey(b.Name)] || addresses[normalizeKey(b.Address)] {
			duplicates = append(duplicates, b)
		} else {
			fresh = append(fresh, b)
		}
	}
	return duplicates, fresh
}

// normalizeKey lowercases and trims a match key. The Unavailable sentinel
// never matches anything.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == model.Unavailable {
		return ""
	}
	return s
}
