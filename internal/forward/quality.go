package forward

import "github.com/sells-group/broker-finder/internal/model"

// Quality tiers for a broker record's data completeness.
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// requiredWeight and optionalWeight split the completeness score between
// the must-have contact fields and the nice-to-have ones.
const (
	requiredWeight = 0.7
	optionalWeight = 0.3
)

// QualityScore computes data completeness in [0, 1]. Name, phone, and
// address are the required fields; email, website, and contact person are
// optional. The Unavailable sentinel counts as missing.
func QualityScore(b model.EnrichedBroker) float64 {
	required := countPresent(b.Name, b.Phone, b.Address)
	optional := countPresent(b.Email, b.Website, b.ContactPerson)
	return float64(required)/3*requiredWeight + float64(optional)/3*optionalWeight
}

// QualityTier buckets a score: 0.8 and above is high, 0.5 and above is
// medium, anything below is low.
func QualityTier(score float64) string {
	switch {
	case score >= 0.8:
		return QualityHigh
	case score >= 0.5:
		return QualityMedium
	default:
		return QualityLow
	}
}

func countPresent(values ...string) int {
	n := 0
	for _, v := range values {
		if model.Has(v) {
			n++
		}
	}
	return n
}
