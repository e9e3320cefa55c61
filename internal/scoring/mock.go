package scoring

import "context"

// MockScorer is a deterministic local substitute for the learned model,
// used when no scorer URL is configured. It is a hand-tuned linear blend
// in which skill match dominates: a matching specialist beats a closer
// non-specialist.
type MockScorer struct {
	ModelVersion string
}

func (m MockScorer) Score(_ context.Context, features Features) (float64, error) {
	skill := features[FeatureSkillMatch]
	distance := features[FeatureDistanceMeters]
	review := features[FeatureReviewScore]
	severity := features[FeatureSeverityRank]

	// Distance decays smoothly towards zero; 10 km halves the term.
	proximity := 1.0 / (1.0 + distance/10_000.0)

	score := 0.55*skill +
		0.25*proximity +
		0.05*(review/5.0) +
		0.15*(severity/3.0)
	return score, nil
}

func (m MockScorer) Close() error { return nil }
