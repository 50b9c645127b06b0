package types

// RiskLevel is the qualitative severity tier of a threat.
type RiskLevel string

const (
	RiskCritical RiskLevel = "Crítico"
	RiskHigh     RiskLevel = "Alto"
	RiskMedium   RiskLevel = "Medio"
	RiskLow      RiskLevel = "Bajo"
)

// RiskLevels lists the tiers from most to least severe.
var RiskLevels = []RiskLevel{RiskCritical, RiskHigh, RiskMedium, RiskLow}

// Risk thresholds on the 1-25 score scale.
const (
	criticalThreshold = 15
	highThreshold     = 10
	mediumThreshold   = 5
)

// MinRating and MaxRating bound every 1-5 rating (value, capability, impact, probability).
const (
	MinRating = 1
	MaxRating = 5
)

// RiskScore returns impact × probability.
func RiskScore(impact, probability int) int {
	return impact * probability
}

// RiskLevelFor buckets a score: ≥15 Crítico, ≥10 Alto, ≥5 Medio, else Bajo.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= criticalThreshold:
		return RiskCritical
	case score >= highThreshold:
		return RiskHigh
	case score >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ValidRating reports whether r is within 1-5.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
