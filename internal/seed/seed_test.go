package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atm360/backend/internal/models"
)

func TestReadJSON(t *testing.T) {
	dir := t.TempDir()
	content := `[{"id":"b1","name":"Halyk","short_code":"HLK"}]`
	if err := os.WriteFile(filepath.Join(dir, "banks.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var banks []models.Bank
	if err := readJSON(dir, "banks.json", &banks); err != nil {
		t.Fatalf("readJSON: %v", err)
	}
	if len(banks) != 1 || banks[0].ShortCode != "HLK" {
		t.Fatalf("unexpected banks: %+v", banks)
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	var banks []models.Bank
	err := readJSON(t.TempDir(), "banks.json", &banks)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "banks.json") {
		t.Errorf("error should name the file, got %v", err)
	}
}

func TestFillDefaults(t *testing.T) {
	id := ""
	fillID(&id)
	if id == "" {
		t.Fatal("expected generated id")
	}

	keep := "fixed-id"
	fillID(&keep)
	if keep != "fixed-id" {
		t.Fatalf("existing id must be kept, got %s", keep)
	}

	now := time.Now().UTC()
	var created, updated time.Time
	fillTimes(&created, &updated, now)
	if !created.Equal(now) || !updated.Equal(now) {
		t.Fatalf("expected both timestamps set to now, got %v / %v", created, updated)
	}

	fixed := now.Add(-time.Hour)
	created, updated = fixed, time.Time{}
	fillTimes(&created, &updated, now)
	if !updated.Equal(fixed) {
		t.Fatalf("updated should default to created, got %v", updated)
	}
}

func TestRenderSummary(t *testing.T) {
	var sb strings.Builder
	RenderSummary(&sb, Result{Banks: 2, Users: 5, Engineers: 3, ATMs: 10, Tickets: 4})
	out := sb.String()
	for _, want := range []string{"banks", "engineers", "10"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
