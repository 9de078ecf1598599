package quiz

// SubmitPolicy names the per-mode rule for when an attempt may be
// submitted. Practice and review accept any answered question; the
// simulation requires at least half the test answered.
type SubmitPolicy string

const (
	PolicyAnyAnswered  SubmitPolicy = "any_answered"
	PolicyHalfAnswered SubmitPolicy = "half_answered"
)

// Satisfied reports whether the answered count meets the policy for the
// given total. A zero total never satisfies any policy.
func (p SubmitPolicy) Satisfied(answered, total int) bool {
	if total == 0 {
		return false
	}
	switch p {
	case PolicyHalfAnswered:
		return answered*2 >= total
	default:
		return answered > 0
	}
}
