package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/atm360/backend/internal/models"
	"github.com/atm360/backend/internal/risk"
)

// An ATM is at risk when it is not ONLINE, or when its recomputed
// failure risk exceeds this threshold.
const highRiskThreshold = 0.75

type AlertStore interface {
	ListATMs(ctx context.Context) ([]models.ATM, error)
}

type AlertService struct {
	Store  AlertStore
	Logger zerolog.Logger
}

// AtRiskATMs filters the fleet down to the at-risk subset. The risk is
// always recomputed from current telemetry; a stored predictiveScore is
// a cache, not the source of truth. Storage order is preserved.
func (s *AlertService) AtRiskATMs(ctx context.Context) ([]models.ATM, error) {
	atms, err := s.Store.ListATMs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ATM, 0, len(atms))
	for _, atm := range atms {
		if atm.Status != models.AtmStatusOnline || risk.Estimate(atm) > highRiskThreshold {
			out = append(out, atm)
		}
	}

	s.Logger.Debug().
		Int("fleet", len(atms)).
		Int("at_risk", len(out)).
		Msg("at-risk scan")
	return out, nil
}
