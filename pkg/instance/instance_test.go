package instance

import "testing"

func TestIDPrefersDyno(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("KEEPSAKE_INSTANCE_ID", "api-7")
	if got := ID(); got != "web.1" {
		t.Fatalf("expected web.1, got %q", got)
	}
}

func TestIDFallsBackToConfiguredID(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("KEEPSAKE_INSTANCE_ID", "api-7")
	if got := ID(); got != "api-7" {
		t.Fatalf("expected api-7, got %q", got)
	}
}

func TestIDNeverEmpty(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("KEEPSAKE_INSTANCE_ID", "")
	if ID() == "" {
		t.Fatal("expected a non-empty id")
	}
}
