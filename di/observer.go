package di

// Outcome classifies a TryGetService call.
type Outcome uint8

const (
	// OutcomeMiss means nothing satisfied the contract.
	OutcomeMiss Outcome = iota
	// OutcomeHit means a registered or previously cached descriptor was found.
	OutcomeHit
	// OutcomeSpecialized means an open generic registration was closed and cached.
	OutcomeSpecialized
	// OutcomeAggregated means a collection was assembled and cached.
	OutcomeAggregated
)

// String returns the outcome name used as a metrics label.
func (o Outcome) String() string {
	switch o {
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeSpecialized:
		return "specialized"
	case OutcomeAggregated:
		return "aggregated"
	default:
		return "unknown"
	}
}

// Observer receives table events. Implementations must be safe for
// concurrent use and must not call back into the table.
type Observer interface {
	ObserveLookup(contract Type, outcome Outcome)
	ObserveProxy(contract, proxy Type)
	ObserveSpecializationFailure(contract Type, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveLookup(Type, Outcome)              {}
func (nopObserver) ObserveProxy(Type, Type)                  {}
func (nopObserver) ObserveSpecializationFailure(Type, error) {}
