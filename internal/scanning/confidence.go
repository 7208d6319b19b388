package scanning

const (
	amountWeight   = 40
	dateWeight     = 30
	merchantWeight = 30
	completeBonus  = 10
	maxConfidence  = 100
)

// Confidence scores how many of the three receipt fields were found
func Confidence(hasAmount, hasDate, hasMerchant bool) int {
	score := 0
	if hasAmount {
		score += amountWeight
	}
	if hasDate {
		score += dateWeight
	}
	if hasMerchant {
		score += merchantWeight
	}
	if hasAmount && hasDate && hasMerchant {
		score += completeBonus
	}
	return min(score, maxConfidence)
}
