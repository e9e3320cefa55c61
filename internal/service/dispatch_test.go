package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atm360/backend/internal/models"
	"github.com/atm360/backend/internal/scoring"
)

type fakeStore struct {
	atms      map[string]models.ATM
	tickets   map[string]models.Ticket
	engineers []models.Engineer

	assigned  []assignment
	listErr   error
	assignErr error
}

type assignment struct {
	ticketID   string
	engineerID string
	status     string
}

func (f *fakeStore) GetATM(_ context.Context, id string) (models.ATM, error) {
	atm, ok := f.atms[id]
	if !ok {
		return models.ATM{}, errNotFound
	}
	return atm, nil
}

func (f *fakeStore) GetTicket(_ context.Context, id string) (models.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return models.Ticket{}, errNotFound
	}
	return t, nil
}

func (f *fakeStore) ListEngineers(_ context.Context) ([]models.Engineer, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.engineers, nil
}

func (f *fakeStore) AssignEngineerToTicket(_ context.Context, ticketID, engineerID, newStatus string) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assigned = append(f.assigned, assignment{ticketID, engineerID, newStatus})
	return nil
}

var errNotFound = errors.New("not found")

// scoreFunc adapts a function to the Scorer interface.
type scoreFunc func(features scoring.Features) (float64, error)

func (fn scoreFunc) Score(_ context.Context, features scoring.Features) (float64, error) {
	return fn(features)
}

func (fn scoreFunc) Close() error { return nil }

func testLocation() models.Location {
	return models.Location{City: "Astana", Region: "AKMOLA", Latitude: 51.1605, Longitude: 71.4704}
}

func testStore() *fakeStore {
	return &fakeStore{
		atms: map[string]models.ATM{
			"atm-1": {ID: "atm-1", Status: models.AtmStatusOffline, Location: testLocation()},
		},
		tickets: map[string]models.Ticket{
			"t-1": {ID: "t-1", AtmID: "atm-1", Status: models.TicketOpen, Severity: models.SeverityHigh},
		},
		engineers: []models.Engineer{
			{
				ID:             "e-1",
				Name:           "Aigerim",
				Specialization: []string{models.CategoryNetwork},
				LastKnownLocation: &models.GeoPoint{
					Latitude: 51.1650, Longitude: 71.4704, // ~500 m north
				},
			},
			{
				ID:             "e-2",
				Name:           "Bolat",
				Specialization: []string{models.CategoryHardware},
				LastKnownLocation: &models.GeoPoint{
					Latitude: 51.1606, Longitude: 71.4704, // ~10 m north
				},
			},
		},
	}
}

func newDispatch(store *fakeStore, scorer scoring.Scorer) *DispatchService {
	return &DispatchService{Store: store, Scorer: scorer, Logger: zerolog.Nop()}
}

func TestDispatchSelectsSkillMatchOverProximity(t *testing.T) {
	store := testStore()
	svc := newDispatch(store, scoring.MockScorer{})

	res, err := svc.Dispatch(context.Background(), "t-1", "atm-1", "NETWORK_FAILURE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != models.TicketAssigned {
		t.Fatalf("expected assigned, got %s", res.Status)
	}
	if res.EngineerID == nil || *res.EngineerID != "e-1" {
		t.Fatalf("expected network specialist e-1, got %+v", res.EngineerID)
	}
	if len(store.assigned) != 1 || store.assigned[0].engineerID != "e-1" {
		t.Fatalf("expected one assignment to e-1, got %+v", store.assigned)
	}
	if res.Fallback {
		t.Fatal("primary path must not be marked as fallback")
	}
}

func TestDispatchAtmNotFound(t *testing.T) {
	store := testStore()
	svc := newDispatch(store, scoring.MockScorer{})

	_, err := svc.Dispatch(context.Background(), "t-1", "missing-atm", "NETWORK_FAILURE")
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if len(store.assigned) != 0 {
		t.Fatalf("expected no ticket mutation, got %+v", store.assigned)
	}
}

func TestDispatchTicketNotFound(t *testing.T) {
	store := testStore()
	svc := newDispatch(store, scoring.MockScorer{})

	_, err := svc.Dispatch(context.Background(), "missing-ticket", "atm-1", "NETWORK_FAILURE")
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if len(store.assigned) != 0 {
		t.Fatalf("expected no ticket mutation, got %+v", store.assigned)
	}
}

func TestDispatchFallsBackOnScorerFailure(t *testing.T) {
	store := testStore()
	svc := newDispatch(store, scoreFunc(func(scoring.Features) (float64, error) {
		return 0, errors.New("model unavailable")
	}))

	res, err := svc.Dispatch(context.Background(), "t-1", "atm-1", "NETWORK_FAILURE")
	if err != nil {
		t.Fatalf("scoring failure must not surface: %v", err)
	}
	if res.Status != models.TicketAssigned {
		t.Fatalf("expected assigned via fallback, got %s", res.Status)
	}
	if !res.Fallback {
		t.Fatal("expected fallback flag")
	}
	if res.EngineerID == nil {
		t.Fatal("expected some engineer from the full set")
	}
	if len(store.assigned) != 1 {
		t.Fatalf("expected one assignment, got %d", len(store.assigned))
	}
}

func TestDispatchEngineerListFailureSurfaces(t *testing.T) {
	store := testStore()
	store.listErr = errors.New("connection reset")
	svc := newDispatch(store, scoring.MockScorer{})

	_, err := svc.Dispatch(context.Background(), "t-1", "atm-1", "NETWORK_FAILURE")
	if err == nil {
		t.Fatal("expected storage error to surface")
	}
	if len(store.assigned) != 0 {
		t.Fatalf("expected no ticket mutation, got %+v", store.assigned)
	}
}

// blockingScorer never answers; it waits for the round's context to be
// cancelled.
type blockingScorer struct{}

func (blockingScorer) Score(ctx context.Context, _ scoring.Features) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func (blockingScorer) Close() error { return nil }

func TestDispatchTimeoutTriggersFallback(t *testing.T) {
	store := testStore()
	svc := newDispatch(store, blockingScorer{})
	svc.Timeout = 50 * time.Millisecond

	start := time.Now()
	res, err := svc.Dispatch(context.Background(), "t-1", "atm-1", "NETWORK_FAILURE")
	if err != nil {
		t.Fatalf("timeout must not surface: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("dispatch did not respect the scoring timeout, took %v", elapsed)
	}
	if res.Status != models.TicketAssigned || !res.Fallback {
		t.Fatalf("expected fallback assignment after timeout, got %+v", res)
	}
	if len(store.assigned) != 1 {
		t.Fatalf("expected one assignment, got %d", len(store.assigned))
	}
}

func TestDispatchNoEngineersLeavesTicketOpen(t *testing.T) {
	store := testStore()
	store.engineers = nil
	svc := newDispatch(store, scoring.MockScorer{})

	res, err := svc.Dispatch(context.Background(), "t-1", "atm-1", "NETWORK_FAILURE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != models.TicketOpen {
		t.Fatalf("expected open, got %s", res.Status)
	}
	if res.EngineerID != nil {
		t.Fatalf("expected no engineer, got %v", *res.EngineerID)
	}
	if len(store.assigned) != 0 {
		t.Fatalf("expected no ticket mutation, got %+v", store.assigned)
	}
}

func TestDispatchAllZeroScoresSelectNobody(t *testing.T) {
	store := testStore()
	svc := newDispatch(store, scoreFunc(func(scoring.Features) (float64, error) {
		return 0, nil
	}))

	res, err := svc.Dispatch(context.Background(), "t-1", "atm-1", "NETWORK_FAILURE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Strict > against the zero baseline: a 0.0 score never wins.
	if res.Status != models.TicketOpen || res.EngineerID != nil {
		t.Fatalf("expected open unassigned result, got %+v", res)
	}
	if len(store.assigned) != 0 {
		t.Fatalf("expected no assignment, got %+v", store.assigned)
	}
}

func TestDispatchTieKeepsFirstSeenWinner(t *testing.T) {
	store := testStore()
	svc := newDispatch(store, scoreFunc(func(scoring.Features) (float64, error) {
		return 0.5, nil
	}))

	res, err := svc.Dispatch(context.Background(), "t-1", "atm-1", "NETWORK_FAILURE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EngineerID == nil || *res.EngineerID != "e-1" {
		t.Fatalf("expected first-seen engineer e-1 on tie, got %+v", res.EngineerID)
	}
}

func TestDispatchScoresEngineersWithUnknownLocation(t *testing.T) {
	store := testStore()
	store.engineers = []models.Engineer{
		{ID: "e-3", Name: "Dana", Specialization: []string{models.CategoryNetwork}},
	}
	svc := newDispatch(store, scoring.MockScorer{})

	res, err := svc.Dispatch(context.Background(), "t-1", "atm-1", "NETWORK_FAILURE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EngineerID == nil || *res.EngineerID != "e-3" {
		t.Fatalf("expected e-3 despite unknown location, got %+v", res.EngineerID)
	}
}

func TestNormalizeIssueCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cash_dispenser_fault", models.CategoryHardware},
		{"CARD_READER_FAULT", models.CategoryHardware},
		{"power_failure", models.CategoryPower},
		{"NETWORK_FAILURE", models.CategoryNetwork},
		{"connectivity loss", models.CategoryNetwork},
		{"software_crash", models.CategorySoftware},
		{"something_weird", models.CategorySoftware},
		{"", models.CategorySoftware},
	}
	for _, tc := range cases {
		if got := NormalizeIssueCategory(tc.in); got != tc.want {
			t.Errorf("NormalizeIssueCategory(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSeverityRank(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"LOW", 0},
		{"MEDIUM", 1},
		{"HIGH", 2},
		{"CRITICAL", 3},
		{"critical", 3},
		{"bogus", 1},
		{"", 1},
	}
	for _, tc := range cases {
		if got := SeverityRank(tc.in); got != tc.want {
			t.Errorf("SeverityRank(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
