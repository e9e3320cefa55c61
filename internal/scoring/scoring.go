package scoring

import "context"

// Feature vector layout submitted to the suitability model. The order is
// part of the model contract and must not change.
const (
	FeatureSkillMatch = iota
	FeatureDistanceMeters
	FeatureReviewScore
	FeatureSeverityRank

	FeatureCount
)

// Features is one engineer's input to the suitability model.
type Features [FeatureCount]float64

// Scorer turns a feature vector into a single suitability score. The
// model is a black box: higher is better, failures are routed to the
// dispatcher's fallback path by the caller.
type Scorer interface {
	Score(ctx context.Context, features Features) (float64, error)
	Close() error
}
