package progress

import (
	"context"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestMarkBeaten(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)

	beaten, err := s.Beaten(ctx, "push")
	if err != nil {
		t.Fatalf("Beaten() error = %v", err)
	}
	if beaten {
		t.Error("Beaten(push) = true on a fresh store")
	}

	if err := s.MarkBeaten(ctx, "push", 9); err != nil {
		t.Fatalf("MarkBeaten() error = %v", err)
	}
	if beaten, _ := s.Beaten(ctx, "push"); !beaten {
		t.Error("Beaten(push) = false after MarkBeaten")
	}
	if beaten, _ := s.Beaten(ctx, "ramp"); beaten {
		t.Error("Beaten(ramp) = true, only push was beaten")
	}
}

func TestMarkBeatenKeepsBest(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)

	for _, ticks := range []int{12, 7, 20} {
		if err := s.MarkBeaten(ctx, "corner", ticks); err != nil {
			t.Fatalf("MarkBeaten(%d) error = %v", ticks, err)
		}
	}

	records, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("All() returned %d records, want 1", len(records))
	}
	if records[0].Ticks != 7 {
		t.Errorf("Ticks = %d, want 7", records[0].Ticks)
	}
	if records[0].BeatenAt.IsZero() {
		t.Error("BeatenAt not set")
	}
}

func TestProgressPersists(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t)
	if err := s.MarkBeaten(ctx, "first-steps", 4); err != nil {
		t.Fatalf("MarkBeaten() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reopened.Close()
	if beaten, _ := reopened.Beaten(ctx, "first-steps"); !beaten {
		t.Error("progress lost across reopen")
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") should fail")
	}
}
