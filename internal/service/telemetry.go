package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/atm360/backend/internal/models"
	"github.com/atm360/backend/internal/risk"
)

type TelemetryStore interface {
	GetATM(ctx context.Context, id string) (models.ATM, error)
	ListATMs(ctx context.Context) ([]models.ATM, error)
	UpdateATMTelemetry(ctx context.Context, atm models.ATM) error
}

type TelemetryService struct {
	Store  TelemetryStore
	Logger zerolog.Logger
}

// Snapshots maps the full fleet to lightweight telemetry packets.
func (s *TelemetryService) Snapshots(ctx context.Context) ([]models.TelemetryPacket, error) {
	atms, err := s.Store.ListATMs(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	packets := make([]models.TelemetryPacket, 0, len(atms))
	for _, atm := range atms {
		packets = append(packets, models.TelemetryPacket{
			AtmID:         atm.ID,
			Timestamp:     now,
			Status:        atm.Status,
			NetworkStatus: atm.NetworkStatus,
			CashLevel:     atm.CashLevel,
			PowerStatus:   atm.PowerStatus,
			Diagnostics:   atm.Diagnostics,
		})
	}
	return packets, nil
}

// TelemetryUpdate carries the dynamic fields an ATM reports.
type TelemetryUpdate struct {
	Status        string             `json:"status" validate:"required"`
	NetworkStatus string             `json:"network_status" validate:"required"`
	CashLevel     models.CashLevel   `json:"cash_level"`
	PowerStatus   models.PowerStatus `json:"power_status"`
	Diagnostics   models.Diagnostics `json:"diagnostics"`
}

// Ingest applies a telemetry update to an ATM and refreshes its cached
// predictive score from the estimator.
func (s *TelemetryService) Ingest(ctx context.Context, atmID string, update TelemetryUpdate) (models.ATM, error) {
	atm, err := s.Store.GetATM(ctx, atmID)
	if err != nil {
		return models.ATM{}, err
	}

	atm.Status = update.Status
	atm.NetworkStatus = update.NetworkStatus
	atm.CashLevel = update.CashLevel
	atm.PowerStatus = update.PowerStatus
	atm.Diagnostics = update.Diagnostics
	atm.PredictiveScore = &models.PredictiveScore{
		FailureRisk:  risk.Estimate(atm),
		LastComputed: time.Now().UTC(),
	}

	if err := s.Store.UpdateATMTelemetry(ctx, atm); err != nil {
		return models.ATM{}, err
	}

	s.Logger.Debug().
		Str("atm_id", atm.ID).
		Str("status", atm.Status).
		Float64("failure_risk", atm.PredictiveScore.FailureRisk).
		Msg("telemetry ingested")
	return atm, nil
}
