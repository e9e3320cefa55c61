// Package seed loads JSON fixture files into a freshly migrated
// database. Fixture passwords are plaintext and get hashed on the way
// in.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"

	"github.com/atm360/backend/internal/auth"
	"github.com/atm360/backend/internal/db"
	"github.com/atm360/backend/internal/models"
)

type userFixture struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type Result struct {
	Banks     int64
	Users     int64
	Engineers int64
	ATMs      int64
	Tickets   int64
}

// Load reads the fixture files from dir and bulk-inserts them in
// dependency order. The schema must already exist.
func Load(ctx context.Context, store *db.Store, dir string, logger zerolog.Logger) (Result, error) {
	var res Result

	var banks []models.Bank
	if err := readJSON(dir, "banks.json", &banks); err != nil {
		return res, err
	}
	var fixtures []userFixture
	if err := readJSON(dir, "users.json", &fixtures); err != nil {
		return res, err
	}
	var engineers []models.Engineer
	if err := readJSON(dir, "engineers.json", &engineers); err != nil {
		return res, err
	}
	var atms []models.ATM
	if err := readJSON(dir, "atms.json", &atms); err != nil {
		return res, err
	}
	var tickets []models.Ticket
	if err := readJSON(dir, "tickets.json", &tickets); err != nil {
		return res, err
	}

	now := time.Now().UTC()

	for i := range banks {
		fillID(&banks[i].ID)
		fillTimes(&banks[i].CreatedAt, &banks[i].UpdatedAt, now)
	}
	n, err := store.InsertBanks(ctx, banks)
	if err != nil {
		return res, fmt.Errorf("seed banks: %w", err)
	}
	res.Banks = n

	users := make([]models.User, 0, len(fixtures))
	for _, f := range fixtures {
		hash, err := auth.HashPassword(f.Password)
		if err != nil {
			return res, fmt.Errorf("hash password for %s: %w", f.Email, err)
		}
		u := models.User{
			ID:           f.ID,
			Email:        f.Email,
			PasswordHash: hash,
			Role:         f.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		fillID(&u.ID)
		users = append(users, u)
	}
	n, err = store.InsertUsers(ctx, users)
	if err != nil {
		return res, fmt.Errorf("seed users: %w", err)
	}
	res.Users = n

	for i := range engineers {
		fillID(&engineers[i].ID)
		fillTimes(&engineers[i].CreatedAt, &engineers[i].UpdatedAt, now)
	}
	n, err = store.InsertEngineers(ctx, engineers)
	if err != nil {
		return res, fmt.Errorf("seed engineers: %w", err)
	}
	res.Engineers = n

	for i := range atms {
		fillID(&atms[i].ID)
		fillTimes(&atms[i].CreatedAt, &atms[i].UpdatedAt, now)
		if atms[i].LastUpdated.IsZero() {
			atms[i].LastUpdated = now
		}
	}
	n, err = store.InsertATMs(ctx, atms)
	if err != nil {
		return res, fmt.Errorf("seed atms: %w", err)
	}
	res.ATMs = n

	for i := range tickets {
		fillID(&tickets[i].ID)
		fillTimes(&tickets[i].CreatedAt, &tickets[i].UpdatedAt, now)
		if tickets[i].Status == "" {
			tickets[i].Status = models.TicketOpen
		}
	}
	n, err = store.InsertTickets(ctx, tickets)
	if err != nil {
		return res, fmt.Errorf("seed tickets: %w", err)
	}
	res.Tickets = n

	logger.Info().
		Int64("banks", res.Banks).
		Int64("users", res.Users).
		Int64("engineers", res.Engineers).
		Int64("atms", res.ATMs).
		Int64("tickets", res.Tickets).
		Msg("seed complete")
	return res, nil
}

// RenderSummary prints the per-table insert counts.
func RenderSummary(w io.Writer, res Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Table", "Inserted"})
	tw.AppendRow(table.Row{"banks", res.Banks})
	tw.AppendRow(table.Row{"users", res.Users})
	tw.AppendRow(table.Row{"engineers", res.Engineers})
	tw.AppendRow(table.Row{"atms", res.ATMs})
	tw.AppendRow(table.Row{"tickets", res.Tickets})
	tw.Render()
}

func readJSON(dir, name string, out any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read seed file %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse seed file %s: %w", name, err)
	}
	return nil
}

func fillID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func fillTimes(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}
