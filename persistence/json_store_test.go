package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"frontier-realm/server/models"
)

func TestJSONStore_RoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	sum := models.SessionSummary{SessionID: "s1", Width: 600, Height: 600, Structures: 5, StartedAt: time.Now().UTC()}
	if err := store.RecordSession(sum); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}
	for i := 1; i <= 5; i++ {
		if err := store.RecordStats(models.StatsSample{SessionID: "s1", Frame: uint64(i)}); err != nil {
			t.Fatalf("RecordStats: %v", err)
		}
	}
	if err := store.RecordStats(models.StatsSample{SessionID: "other", Frame: 99}); err != nil {
		t.Fatalf("RecordStats: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Session("s1")
	if err != nil || got.Structures != 5 {
		t.Fatalf("Session = %+v, %v", got, err)
	}
	recent, err := reopened.RecentStats("s1", 3)
	if err != nil {
		t.Fatalf("RecentStats: %v", err)
	}
	if len(recent) != 3 || recent[0].Frame != 3 || recent[2].Frame != 5 {
		t.Fatalf("RecentStats = %+v", recent)
	}
	if _, err := reopened.Session("missing"); err == nil {
		t.Error("expected missing session error")
	}
}

func TestJSONStore_SamplesAreBounded(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "diag.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	store.data.Samples = make([]models.StatsSample, maxJSONSamples)
	if err := store.RecordStats(models.StatsSample{SessionID: "s", Frame: 1}); err != nil {
		t.Fatalf("RecordStats: %v", err)
	}
	if n := len(store.data.Samples); n != maxJSONSamples {
		t.Fatalf("kept %d samples", n)
	}
	if last := store.data.Samples[maxJSONSamples-1]; last.SessionID != "s" {
		t.Fatalf("newest sample lost: %+v", last)
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		kind string
		file string
	}{
		{"", filepath.Join(dir, "a.json")},
		{"json", filepath.Join(dir, "b.json")},
		{"sqlite", filepath.Join(dir, "c.db")},
		{"none", ""},
	}
	for _, c := range cases {
		s, err := Open(c.kind, c.file, "")
		if err != nil {
			t.Fatalf("Open(%q): %v", c.kind, err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("Close(%q): %v", c.kind, err)
		}
	}
	if _, err := Open("redis", "", ""); err == nil {
		t.Error("expected unknown backend error")
	}
}
