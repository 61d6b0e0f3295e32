// Package dispatch contains the pure scoring, slot-packing and pricing logic
// behind the automation endpoints. Everything here is side-effect free; the
// service layer owns persistence.
package dispatch

import "strings"

const (
	// MinPriority and MaxPriority bound every triage result.
	MinPriority = 1
	MaxPriority = 10

	defaultBasePriority = 5
)

// servicePriority maps a service type to its base urgency.
var servicePriority = map[string]int{
	"engine":       9,
	"transmission": 9,
	"brakes":       8,
	"suspension":   6,
	"electrical":   6,
	"diagnostics":  5,
	"oil_change":   3,
	"tyres":        5,
	"ac":           4,
	"bodywork":     4,
}

// keywordModifiers are additive adjustments applied per matching substring of
// the lowercased description.
var keywordModifiers = map[string]int{
	"smoke":       2,
	"fire":        3,
	"leak":        2,
	"won't start": 3,
	"brake":       2,
	"stall":       1,
	"noise":       1,
	"overheat":    2,
	"slow":        -1,
	"maintenance": -2,
}

// TriagePriority computes the urgency score for a request: service-type base
// plus keyword modifiers, clamped to [1,10]. Repeated calls with a different
// description replace, never accumulate.
func TriagePriority(serviceType, description string) int {
	priority, ok := servicePriority[serviceType]
	if !ok {
		priority = defaultBasePriority
	}

	desc := strings.ToLower(description)
	for word, modifier := range keywordModifiers {
		if strings.Contains(desc, word) {
			priority += modifier
		}
	}

	if priority < MinPriority {
		return MinPriority
	}
	if priority > MaxPriority {
		return MaxPriority
	}
	return priority
}
