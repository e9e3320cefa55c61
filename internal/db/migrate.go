package db

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/atm360/backend/internal/models"
)

const schemaSQL = `
DROP TABLE IF EXISTS tickets;
DROP TABLE IF EXISTS atms;
DROP TABLE IF EXISTS engineers;
DROP TABLE IF EXISTS users;
DROP TABLE IF EXISTS banks;

CREATE TABLE banks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	short_code TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('ADMIN', 'ENGINEER', 'CUSTOMER')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE engineers (
	id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	employee_code TEXT NOT NULL,
	phone TEXT NOT NULL,
	email TEXT NOT NULL,
	region TEXT NOT NULL,
	specialization JSONB NOT NULL,
	current_status TEXT NOT NULL,
	performance JSONB NOT NULL,
	last_known_location JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE atms (
	id TEXT PRIMARY KEY,
	bank_id TEXT NOT NULL REFERENCES banks(id),
	location JSONB NOT NULL,
	model TEXT NOT NULL,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	network_status TEXT NOT NULL,
	cash_level JSONB NOT NULL,
	power_status JSONB NOT NULL,
	diagnostics JSONB NOT NULL,
	predictive_score JSONB,
	uptime_metrics JSONB,
	assigned_engineer_id TEXT REFERENCES engineers(id),
	last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE tickets (
	id TEXT PRIMARY KEY,
	atm_id TEXT NOT NULL REFERENCES atms(id),
	engineer_id TEXT REFERENCES engineers(id),
	status TEXT NOT NULL CHECK (status IN ('open', 'assigned', 'in_progress', 'closed')),
	issue_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	reported_by TEXT NOT NULL DEFAULT 'SYSTEM',
	proof_photo_url TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_tickets_engineer ON tickets(engineer_id);
CREATE INDEX idx_tickets_status ON tickets(status);
CREATE INDEX idx_atms_status ON atms(status);
`

// Migrate drops and recreates the schema. Destructive; used by the
// migrate command and by seeding.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}

func (s *Store) InsertBanks(ctx context.Context, banks []models.Bank) (int64, error) {
	rows := make([][]any, 0, len(banks))
	for _, b := range banks {
		rows = append(rows, []any{b.ID, b.Name, b.ShortCode, b.CreatedAt, b.UpdatedAt})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"banks"},
		[]string{"id", "name", "short_code", "created_at", "updated_at"},
		pgx.CopyFromRows(rows))
}

func (s *Store) InsertUsers(ctx context.Context, users []models.User) (int64, error) {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{u.ID, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"users"},
		[]string{"id", "email", "password_hash", "role", "created_at", "updated_at"},
		pgx.CopyFromRows(rows))
}

func (s *Store) InsertEngineers(ctx context.Context, engineers []models.Engineer) (int64, error) {
	rows := make([][]any, 0, len(engineers))
	for _, e := range engineers {
		spec, err := json.Marshal(e.Specialization)
		if err != nil {
			return 0, err
		}
		perf, err := json.Marshal(e.Performance)
		if err != nil {
			return 0, err
		}
		var location []byte
		if e.LastKnownLocation != nil {
			if location, err = json.Marshal(e.LastKnownLocation); err != nil {
				return 0, err
			}
		}
		rows = append(rows, []any{
			e.ID, e.Name, e.EmployeeCode, e.Phone, e.Email, e.Region,
			spec, e.CurrentStatus, perf, location, e.CreatedAt, e.UpdatedAt,
		})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"engineers"},
		[]string{"id", "name", "employee_code", "phone", "email", "region",
			"specialization", "current_status", "performance", "last_known_location",
			"created_at", "updated_at"},
		pgx.CopyFromRows(rows))
}

func (s *Store) InsertATMs(ctx context.Context, atms []models.ATM) (int64, error) {
	rows := make([][]any, 0, len(atms))
	for _, a := range atms {
		location, cash, power, diag, predictive, uptime, err := marshalAtmFields(a)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []any{
			a.ID, a.BankID, location, a.Model, a.Type, a.Status, a.NetworkStatus,
			cash, power, diag, predictive, uptime,
			a.AssignedEngineerID, a.LastUpdated, a.CreatedAt, a.UpdatedAt,
		})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"atms"},
		[]string{"id", "bank_id", "location", "model", "type", "status", "network_status",
			"cash_level", "power_status", "diagnostics", "predictive_score", "uptime_metrics",
			"assigned_engineer_id", "last_updated", "created_at", "updated_at"},
		pgx.CopyFromRows(rows))
}

func (s *Store) InsertTickets(ctx context.Context, tickets []models.Ticket) (int64, error) {
	rows := make([][]any, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []any{
			t.ID, t.AtmID, t.EngineerID, t.Status, t.IssueType, t.Severity,
			t.Description, t.ReportedBy, t.ProofPhotoURL, t.CreatedAt, t.UpdatedAt,
		})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"tickets"},
		[]string{"id", "atm_id", "engineer_id", "status", "issue_type", "severity",
			"description", "reported_by", "proof_photo_url", "created_at", "updated_at"},
		pgx.CopyFromRows(rows))
}
