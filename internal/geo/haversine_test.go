package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	if d := DistanceMeters(51.1605, 71.4704, 51.1605, 71.4704); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := DistanceMeters(51.1605, 71.4704, 43.2220, 76.8512)
	b := DistanceMeters(43.2220, 76.8512, 51.1605, 71.4704)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("expected symmetric distances, got %f and %f", a, b)
	}
}

func TestDistanceKnownPair(t *testing.T) {
	// Astana to Almaty is roughly 970 km by great circle.
	d := DistanceMeters(51.1605, 71.4704, 43.2220, 76.8512)
	if d < 940_000 || d > 1_000_000 {
		t.Fatalf("unexpected Astana-Almaty distance: %f m", d)
	}
}
