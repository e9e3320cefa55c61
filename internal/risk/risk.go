package risk

import (
	"math"

	"github.com/atm360/backend/internal/models"
)

// Weights of the four telemetry sub-scores. They sum to 1.0.
const (
	weightPower       = 0.40
	weightNetwork     = 0.30
	weightDiagnostics = 0.20
	weightUptime      = 0.10
)

const (
	criticalTempC    = 50.0
	lowFuelThreshold = 15.0
	baseNetworkRisk  = 0.05

	defaultFuelLevel = 100.0
	defaultTempC     = 30.0
	defaultUptimePct = 100.0
)

// Estimate computes the failure risk for an ATM as a value in [0,1].
// It is deterministic and total: missing optional telemetry fields fall
// back to documented defaults instead of failing.
//
// Known quirk kept from the original scoring rules: a DISCONNECTED ATM
// carries a lower network sub-score (0.0) than an INTERMITTENT one (0.8).
// Flag to stakeholders before changing.
func Estimate(atm models.ATM) float64 {
	score := powerScore(atm.PowerStatus)*weightPower +
		networkScore(atm.NetworkStatus)*weightNetwork +
		diagnosticsScore(atm.Diagnostics)*weightDiagnostics +
		uptimeScore(atm.UptimeMetrics)*weightUptime

	return clamp01(score)
}

func powerScore(p models.PowerStatus) float64 {
	fuel := defaultFuelLevel
	if p.FuelLevel != nil {
		fuel = *p.FuelLevel
	}

	switch {
	case p.Mains:
		return 0.0
	case p.Generator && fuel > lowFuelThreshold:
		return 0.3
	case p.Inverter:
		return 0.7
	case p.Generator && fuel <= lowFuelThreshold:
		return 1.0
	default:
		// No power source reported at all.
		return 0.0
	}
}

func networkScore(status string) float64 {
	switch status {
	case models.NetworkConnected:
		return baseNetworkRisk
	case models.NetworkIntermittent:
		return 0.8
	default:
		return 0.0
	}
}

func diagnosticsScore(d models.Diagnostics) float64 {
	errorScore := 0.0
	if len(d.ErrorCodes) > 0 {
		errorScore = 1.0
	}

	temp := defaultTempC
	if d.TemperatureC != nil {
		temp = *d.TemperatureC
	}
	tempScore := clamp01(temp / criticalTempC)

	return (errorScore + tempScore) / 2.0
}

func uptimeScore(m *models.UptimeMetrics) float64 {
	uptime := defaultUptimePct
	if m != nil && m.UptimePercentageLast7Days != nil {
		uptime = *m.UptimePercentageLast7Days
	}
	return 1.0 - uptime/100.0
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
