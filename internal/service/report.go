package service

import (
	"context"
	"math"

	"github.com/atm360/backend/internal/models"
)

type ReportStore interface {
	UptimeStats(ctx context.Context) (total int, online int, err error)
	ActiveFaults(ctx context.Context) (int, error)
	AvgRepairSeconds(ctx context.Context) (*float64, error)
}

type ReportService struct {
	Store ReportStore
}

// GenerateKPIReport computes the dashboard KPIs. Uptime is 0 for an
// empty fleet; avgRepairTimeMinutes stays nil until a ticket has been
// closed.
func (s *ReportService) GenerateKPIReport(ctx context.Context) (models.KPIReport, error) {
	total, online, err := s.Store.UptimeStats(ctx)
	if err != nil {
		return models.KPIReport{}, err
	}

	uptimePercent := 0.0
	if total > 0 {
		uptimePercent = float64(online) / float64(total) * 100
	}

	activeFaults, err := s.Store.ActiveFaults(ctx)
	if err != nil {
		return models.KPIReport{}, err
	}

	avgSeconds, err := s.Store.AvgRepairSeconds(ctx)
	if err != nil {
		return models.KPIReport{}, err
	}
	var avgMinutes *float64
	if avgSeconds != nil {
		m := roundTo1(*avgSeconds / 60)
		avgMinutes = &m
	}

	return models.KPIReport{
		UptimePercent:        roundTo1(uptimePercent),
		AvgRepairTimeMinutes: avgMinutes,
		ActiveFaults:         activeFaults,
	}, nil
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
