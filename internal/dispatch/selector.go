package dispatch

import (
	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/geo"
)

// earliness is a neutral placeholder until queue lookahead feeds the score.
const earliness = 0.5

// Weights tunes the selector's score components. Distance, earliness and
// workload penalize; rating rewards. They should sum to roughly 1.
type Weights struct {
	Distance float64
	Earliest float64
	Workload float64
	Rating   float64
}

// DefaultWeights mirrors the production tuning.
var DefaultWeights = Weights{Distance: 0.3, Earliest: 0.3, Workload: 0.2, Rating: 0.2}

// Candidate pairs a technician with its distance from the request's yard.
type Candidate struct {
	Technician domain.Technician
	DistanceKM float64
}

// NewCandidate computes the yard distance for a technician.
func NewCandidate(tech domain.Technician, yard domain.GeoPoint) Candidate {
	return Candidate{
		Technician: tech,
		DistanceKM: geo.DistanceKM(yard.Lat(), yard.Lng(), tech.Location.Lat(), tech.Location.Lng()),
	}
}

// Score computes the weighted penalty for a candidate; lower wins. Distance is
// normalized against refRadiusKM, workload against MaxDailyJobs (a missing
// capacity reads as fully loaded), rating against the 5-star ceiling.
func Score(c Candidate, w Weights, refRadiusKM float64) float64 {
	distNorm := 0.0
	if refRadiusKM > 0 {
		distNorm = c.DistanceKM / refRadiusKM
	}

	loadNorm := 1.0
	if c.Technician.MaxDailyJobs > 0 {
		loadNorm = float64(c.Technician.Workload()) / float64(c.Technician.MaxDailyJobs)
	}

	ratingNorm := c.Technician.Rating / 5.0

	return w.Distance*distNorm + w.Earliest*earliness + w.Workload*loadNorm - w.Rating*ratingNorm
}

// PickBest returns the lowest-scoring candidate. Ties keep the earlier
// candidate, so store iteration order decides. Returns false for an empty set.
func PickBest(candidates []Candidate, w Weights, refRadiusKM float64) (Candidate, float64, bool) {
	if len(candidates) == 0 {
		return Candidate{}, 0, false
	}
	best := candidates[0]
	bestScore := Score(best, w, refRadiusKM)
	for _, c := range candidates[1:] {
		if s := Score(c, w, refRadiusKM); s < bestScore {
			best = c
			bestScore = s
		}
	}
	return best, bestScore, true
}
