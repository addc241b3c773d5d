package menu

import (
	"testing"
	"time"
)

func TestCombinationID(t *testing.T) {
	if got := CombinationID(1); got != "menu-1" {
		t.Errorf("CombinationID(1) = %q", got)
	}
	if got := CombinationID(42); got != "menu-42" {
		t.Errorf("CombinationID(42) = %q", got)
	}
}

func TestIsCombinationID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"menu-1", true},
		{"menu-123", true},
		{"menu", false},
		{"menudo-1", false},
		{"prod-abc", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsCombinationID(tc.id); got != tc.want {
			t.Errorf("IsCombinationID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestSnapshot_Expired(t *testing.T) {
	created := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	snap := &Snapshot{CreatedAt: created}

	if snap.Expired(created.Add(SnapshotTTL - time.Second)) {
		t.Error("snapshot must be valid just before the TTL")
	}
	if !snap.Expired(created.Add(SnapshotTTL)) {
		t.Error("snapshot must be expired exactly at the TTL")
	}
}

func TestSnapshot_Clone_IndependentSlices(t *testing.T) {
	snap := &Snapshot{
		Version:      SnapshotVersion,
		MenuProducts: []Product{{ID: "p1", Name: "Ajiaco"}},
	}

	clone := snap.Clone()
	clone.MenuProducts[0].Name = "mutated"

	if snap.MenuProducts[0].Name != "Ajiaco" {
		t.Error("mutating a clone must not affect the original")
	}
}

func TestGenerationInput_EmptyRoles(t *testing.T) {
	in := GenerationInput{
		Entrada:  []Product{{ID: "e1"}},
		Proteina: []Product{{ID: "r1"}},
	}

	empty := in.EmptyRoles()
	want := []CategoryRole{RolePrincipio, RoleAcompanamiento, RoleBebida}
	if len(empty) != len(want) {
		t.Fatalf("expected %d empty roles, got %d", len(want), len(empty))
	}
	for i := range want {
		if empty[i] != want[i] {
			t.Errorf("empty role %d: expected %s, got %s", i, want[i], empty[i])
		}
	}
}
