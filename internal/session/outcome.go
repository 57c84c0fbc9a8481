// ABOUTME: Result of a class booking attempt.
// ABOUTME: Separates the expected duplicate case from real errors.
package session

// Outcome reports how a booking request was resolved.
type Outcome int

const (
	// OutcomeError means the booking failed; the error says why.
	OutcomeError Outcome = iota
	// OutcomeJoined means a new workout was stored.
	OutcomeJoined
	// OutcomeDuplicate means the user already had this exact booking.
	OutcomeDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeError:
		return "error"
	case OutcomeJoined:
		return "joined"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}
