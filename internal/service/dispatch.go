package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/atm360/backend/internal/geo"
	"github.com/atm360/backend/internal/models"
	"github.com/atm360/backend/internal/scoring"
)

// Review score is a fixed constant until real per-engineer performance
// data feeds the model.
const defaultReviewScore = 4.0

// Engineers without a last known location get a random position within
// this many degrees of the ATM instead of an infinite-distance penalty.
const locationJitterDeg = 0.45

const defaultScoreTimeout = 10 * time.Second

type DispatchStore interface {
	GetATM(ctx context.Context, id string) (models.ATM, error)
	GetTicket(ctx context.Context, id string) (models.Ticket, error)
	ListEngineers(ctx context.Context) ([]models.Engineer, error)
	AssignEngineerToTicket(ctx context.Context, ticketID, engineerID, newStatus string) error
}

// DispatchService assigns engineers to tickets. The primary path scores
// every engineer through the learned model; when the model is
// unavailable it degrades to uniform random selection rather than
// failing the dispatch.
type DispatchService struct {
	Store   DispatchStore
	Scorer  scoring.Scorer
	Logger  zerolog.Logger
	Timeout time.Duration
}

func (s *DispatchService) Dispatch(ctx context.Context, ticketID, atmID, issueType string) (models.DispatchResult, error) {
	atm, err := s.Store.GetATM(ctx, atmID)
	if err != nil {
		return models.DispatchResult{}, err
	}
	ticket, err := s.Store.GetTicket(ctx, ticketID)
	if err != nil {
		return models.DispatchResult{}, err
	}

	// No pre-filtering by region: distance is a model feature.
	engineers, err := s.Store.ListEngineers(ctx)
	if err != nil {
		return models.DispatchResult{}, err
	}
	if len(engineers) == 0 {
		s.Logger.Warn().Str("ticket_id", ticket.ID).Msg("no engineers registered, ticket left open")
		return models.DispatchResult{
			TicketID: ticket.ID,
			AtmID:    atm.ID,
			Status:   models.TicketOpen,
			Message:  "Fault logged. No engineer available, ticket set to open.",
		}, nil
	}

	fallback := false
	best, found, err := s.scoreRound(ctx, engineers, atm, ticket, issueType)
	if err != nil {
		// Degraded mode: the model is unreachable or misbehaving, so
		// pick uniformly at random from the full engineer set.
		s.Logger.Warn().Err(err).Str("ticket_id", ticket.ID).Msg("scoring failed, falling back to random selection")
		best = engineers[rand.Intn(len(engineers))]
		found = true
		fallback = true
	}

	if !found {
		// Every candidate scored at or below the zero baseline.
		s.Logger.Info().Str("ticket_id", ticket.ID).Msg("no engineer scored above zero, ticket left open")
		return models.DispatchResult{
			TicketID: ticket.ID,
			AtmID:    atm.ID,
			Status:   models.TicketOpen,
			Message:  "Fault logged. No engineer available, ticket set to open.",
		}, nil
	}

	if err := s.Store.AssignEngineerToTicket(ctx, ticket.ID, best.ID, models.TicketAssigned); err != nil {
		return models.DispatchResult{}, err
	}

	s.Logger.Info().
		Str("ticket_id", ticket.ID).
		Str("atm_id", atm.ID).
		Str("engineer_id", best.ID).
		Bool("fallback", fallback).
		Msg("engineer dispatched")

	return models.DispatchResult{
		TicketID:   ticket.ID,
		AtmID:      atm.ID,
		EngineerID: &best.ID,
		Status:     models.TicketAssigned,
		Message:    "Successfully assigned Engineer " + best.Name,
		Fallback:   fallback,
	}, nil
}

// scoreRound scores every engineer concurrently. One failure fails the
// whole round; partial results are never used. The second return is
// false when no engineer beats the zero baseline (strict comparison, a
// 0.0 score never wins).
func (s *DispatchService) scoreRound(ctx context.Context, engineers []models.Engineer, atm models.ATM, ticket models.Ticket, issueType string) (models.Engineer, bool, error) {
	if s.Scorer == nil {
		return models.Engineer{}, false, errors.New("no scorer configured")
	}

	category := NormalizeIssueCategory(issueType)
	severity := SeverityRank(ticket.Severity)

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultScoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	scores := make([]float64, len(engineers))
	g, gctx := errgroup.WithContext(ctx)
	for i, eng := range engineers {
		i, eng := i, eng
		features := s.buildFeatures(eng, atm.Location, category, severity)
		g.Go(func() error {
			score, err := s.Scorer.Score(gctx, features)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Engineer{}, false, err
	}

	highest := 0.0
	bestIdx := -1
	for i, score := range scores {
		if score > highest {
			highest = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return models.Engineer{}, false, nil
	}
	return engineers[bestIdx], true, nil
}

func (s *DispatchService) buildFeatures(eng models.Engineer, atmLoc models.Location, category string, severityRank int) scoring.Features {
	skillMatch := 0.0
	if hasSpecialization(eng.Specialization, category) {
		skillMatch = 1.0
	}

	engLat, engLon := engineerPosition(eng, atmLoc)
	distance := geo.DistanceMeters(engLat, engLon, atmLoc.Latitude, atmLoc.Longitude)

	var f scoring.Features
	f[scoring.FeatureSkillMatch] = skillMatch
	f[scoring.FeatureDistanceMeters] = distance
	f[scoring.FeatureReviewScore] = defaultReviewScore
	f[scoring.FeatureSeverityRank] = float64(severityRank)
	return f
}

// engineerPosition returns the engineer's last known coordinates, or a
// uniformly random point near the ATM when the position is unknown.
func engineerPosition(eng models.Engineer, atmLoc models.Location) (float64, float64) {
	if eng.LastKnownLocation != nil {
		return eng.LastKnownLocation.Latitude, eng.LastKnownLocation.Longitude
	}
	lat := atmLoc.Latitude + (rand.Float64()*2-1)*locationJitterDeg
	lon := atmLoc.Longitude + (rand.Float64()*2-1)*locationJitterDeg
	return lat, lon
}

func hasSpecialization(specialization []string, category string) bool {
	for _, s := range specialization {
		if strings.EqualFold(strings.TrimSpace(s), category) {
			return true
		}
	}
	return false
}

// NormalizeIssueCategory collapses a raw issue type into one of the four
// specialization tags. Anything unmapped falls to SOFTWARE.
func NormalizeIssueCategory(issueType string) string {
	v := strings.ToUpper(strings.TrimSpace(issueType))
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case "CASH_DISPENSER_FAULT", "CARD_READER_FAULT", "RECEIPT_PRINTER_FAULT", "HARDWARE_FAULT", "HARDWARE":
		return models.CategoryHardware
	case "POWER_FAILURE", "GENERATOR_FAULT", "LOW_FUEL", "POWER":
		return models.CategoryPower
	case "NETWORK_FAILURE", "CONNECTIVITY_LOSS", "NETWORK":
		return models.CategoryNetwork
	case "SOFTWARE_CRASH", "OS_ERROR", "APPLICATION_FAULT", "SOFTWARE":
		return models.CategorySoftware
	default:
		return models.CategorySoftware
	}
}

// SeverityRank encodes severity ordinally: LOW=0, MEDIUM=1, HIGH=2,
// CRITICAL=3. Unrecognized severities are treated as MEDIUM, never
// rejected.
func SeverityRank(severity string) int {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case models.SeverityLow:
		return 0
	case models.SeverityMedium:
		return 1
	case models.SeverityHigh:
		return 2
	case models.SeverityCritical:
		return 3
	default:
		return 1
	}
}
