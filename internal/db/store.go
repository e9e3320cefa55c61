package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atm360/backend/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const atmColumns = `id, bank_id, location, model, type, status, network_status,
	cash_level, power_status, diagnostics, predictive_score, uptime_metrics,
	assigned_engineer_id, last_updated, created_at, updated_at`

func scanAtm(row rowScanner) (models.ATM, error) {
	var a models.ATM
	var locationJSON, cashJSON, powerJSON, diagJSON, predictiveJSON, uptimeJSON []byte
	if err := row.Scan(
		&a.ID, &a.BankID, &locationJSON, &a.Model, &a.Type, &a.Status, &a.NetworkStatus,
		&cashJSON, &powerJSON, &diagJSON, &predictiveJSON, &uptimeJSON,
		&a.AssignedEngineerID, &a.LastUpdated, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return models.ATM{}, err
	}

	if err := json.Unmarshal(locationJSON, &a.Location); err != nil {
		return models.ATM{}, err
	}
	if err := json.Unmarshal(cashJSON, &a.CashLevel); err != nil {
		return models.ATM{}, err
	}
	if err := json.Unmarshal(powerJSON, &a.PowerStatus); err != nil {
		return models.ATM{}, err
	}
	if err := json.Unmarshal(diagJSON, &a.Diagnostics); err != nil {
		return models.ATM{}, err
	}
	if len(predictiveJSON) > 0 {
		if err := json.Unmarshal(predictiveJSON, &a.PredictiveScore); err != nil {
			return models.ATM{}, err
		}
	}
	if len(uptimeJSON) > 0 {
		if err := json.Unmarshal(uptimeJSON, &a.UptimeMetrics); err != nil {
			return models.ATM{}, err
		}
	}
	return a, nil
}

func marshalAtmFields(a models.ATM) (location, cash, power, diag, predictive, uptime []byte, err error) {
	if location, err = json.Marshal(a.Location); err != nil {
		return
	}
	if cash, err = json.Marshal(a.CashLevel); err != nil {
		return
	}
	if power, err = json.Marshal(a.PowerStatus); err != nil {
		return
	}
	if diag, err = json.Marshal(a.Diagnostics); err != nil {
		return
	}
	if a.PredictiveScore != nil {
		if predictive, err = json.Marshal(a.PredictiveScore); err != nil {
			return
		}
	}
	if a.UptimeMetrics != nil {
		if uptime, err = json.Marshal(a.UptimeMetrics); err != nil {
			return
		}
	}
	return
}

func (s *Store) CreateATM(ctx context.Context, a models.ATM) error {
	location, cash, power, diag, predictive, uptime, err := marshalAtmFields(a)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO atms (
			id, bank_id, location, model, type, status, network_status,
			cash_level, power_status, diagnostics, predictive_score, uptime_metrics,
			assigned_engineer_id, last_updated, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, a.ID, a.BankID, location, a.Model, a.Type, a.Status, a.NetworkStatus,
		cash, power, diag, predictive, uptime,
		a.AssignedEngineerID, a.LastUpdated, a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *Store) GetATM(ctx context.Context, id string) (models.ATM, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+atmColumns+` FROM atms WHERE id = $1`, id)
	a, err := scanAtm(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ATM{}, ErrNotFound
	}
	return a, err
}

func (s *Store) ListATMs(ctx context.Context) ([]models.ATM, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+atmColumns+` FROM atms ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ATM
	for rows.Next() {
		a, err := scanAtm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpdateATM(ctx context.Context, a models.ATM) error {
	location, cash, power, diag, predictive, uptime, err := marshalAtmFields(a)
	if err != nil {
		return err
	}
	tag, err := s.Pool.Exec(ctx, `
		UPDATE atms SET
			location = $1, model = $2, type = $3, status = $4, network_status = $5,
			cash_level = $6, power_status = $7, diagnostics = $8,
			predictive_score = $9, uptime_metrics = $10, assigned_engineer_id = $11,
			last_updated = NOW(), updated_at = NOW()
		WHERE id = $12
	`, location, a.Model, a.Type, a.Status, a.NetworkStatus,
		cash, power, diag, predictive, uptime, a.AssignedEngineerID, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateATMTelemetry writes the dynamic fields refreshed by telemetry
// ingestion, including the cached predictive score.
func (s *Store) UpdateATMTelemetry(ctx context.Context, a models.ATM) error {
	_, cash, power, diag, predictive, _, err := marshalAtmFields(a)
	if err != nil {
		return err
	}
	tag, err := s.Pool.Exec(ctx, `
		UPDATE atms SET
			status = $1, network_status = $2, cash_level = $3, power_status = $4,
			diagnostics = $5, predictive_score = $6, last_updated = NOW(), updated_at = NOW()
		WHERE id = $7
	`, a.Status, a.NetworkStatus, cash, power, diag, predictive, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteATM(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM atms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const engineerColumns = `id, name, employee_code, phone, email, region,
	specialization, current_status, performance, last_known_location,
	created_at, updated_at`

func scanEngineer(row rowScanner) (models.Engineer, error) {
	var e models.Engineer
	var specJSON, performanceJSON, locationJSON []byte
	if err := row.Scan(
		&e.ID, &e.Name, &e.EmployeeCode, &e.Phone, &e.Email, &e.Region,
		&specJSON, &e.CurrentStatus, &performanceJSON, &locationJSON,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return models.Engineer{}, err
	}
	if err := json.Unmarshal(specJSON, &e.Specialization); err != nil {
		return models.Engineer{}, err
	}
	if err := json.Unmarshal(performanceJSON, &e.Performance); err != nil {
		return models.Engineer{}, err
	}
	if len(locationJSON) > 0 {
		if err := json.Unmarshal(locationJSON, &e.LastKnownLocation); err != nil {
			return models.Engineer{}, err
		}
	}
	return e, nil
}

func (s *Store) ListEngineers(ctx context.Context) ([]models.Engineer, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+engineerColumns+` FROM engineers ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Engineer
	for rows.Next() {
		e, err := scanEngineer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEngineer(ctx context.Context, id string) (models.Engineer, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+engineerColumns+` FROM engineers WHERE id = $1`, id)
	e, err := scanEngineer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Engineer{}, ErrNotFound
	}
	return e, err
}

const ticketColumns = `id, atm_id, engineer_id, status, issue_type, severity,
	description, reported_by, proof_photo_url, created_at, updated_at`

func scanTicket(row rowScanner) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.AtmID, &t.EngineerID, &t.Status, &t.IssueType, &t.Severity,
		&t.Description, &t.ReportedBy, &t.ProofPhotoURL, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO tickets (id, atm_id, engineer_id, status, issue_type, severity, description, reported_by, proof_photo_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, t.ID, t.AtmID, t.EngineerID, t.Status, t.IssueType, t.Severity, t.Description, t.ReportedBy, t.ProofPhotoURL, t.CreatedAt, t.UpdatedAt)
	return err
}

// CreateOpenTicket files a fresh unassigned ticket for an ATM fault.
func (s *Store) CreateOpenTicket(ctx context.Context, id, atmID, issueType, severity, reportedBy string) error {
	now := time.Now().UTC()
	return s.CreateTicket(ctx, models.Ticket{
		ID:         id,
		AtmID:      atmID,
		Status:     models.TicketOpen,
		IssueType:  issueType,
		Severity:   severity,
		ReportedBy: reportedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (s *Store) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, ErrNotFound
	}
	return t, err
}

func (s *Store) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	return s.queryTickets(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC`)
}

func (s *Store) ListTicketsByEngineer(ctx context.Context, engineerID string) ([]models.Ticket, error) {
	return s.queryTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE engineer_id = $1 ORDER BY created_at DESC`, engineerID)
}

func (s *Store) queryTickets(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AssignEngineerToTicket is the single atomic mutation performed by a
// successful dispatch.
func (s *Store) AssignEngineerToTicket(ctx context.Context, ticketID, engineerID, newStatus string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE tickets SET engineer_id = $1, status = $2, updated_at = NOW() WHERE id = $3
	`, engineerID, newStatus, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateTicketStatus(ctx context.Context, ticketID, status string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE tickets SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetTicketProofPhoto(ctx context.Context, ticketID, photoURL string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE tickets SET proof_photo_url = $1, updated_at = NOW() WHERE id = $2
	`, photoURL, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// KPI aggregates. The heavy lifting stays in SQL; rounding happens in the
// report service.

func (s *Store) UptimeStats(ctx context.Context) (total int, online int, err error) {
	err = s.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM atms),
			(SELECT COUNT(*) FROM atms WHERE status = 'ONLINE')
	`).Scan(&total, &online)
	return total, online, err
}

func (s *Store) ActiveFaults(ctx context.Context) (int, error) {
	var count int
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE status != 'closed'`).Scan(&count)
	return count, err
}

// AvgRepairSeconds returns nil when no ticket has been closed yet.
func (s *Store) AvgRepairSeconds(ctx context.Context) (*float64, error) {
	var avg *float64
	err := s.Pool.QueryRow(ctx, `
		SELECT AVG(EXTRACT(EPOCH FROM (updated_at - created_at)))
		FROM tickets
		WHERE status = 'closed'
	`).Scan(&avg)
	return avg, err
}
