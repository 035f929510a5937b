package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", "u1") || !m.Enabled("c", "u1") || !m.Enabled("e", "u1") {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", "u1") || m.Enabled("d", "u1") || m.Enabled("f", "u1") {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if m.Enabled("missing", "u1") {
		t.Fatal("unknown flags must be disabled")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")

	if !m.Enabled("always", "u1") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", "u1") {
		t.Fatal("0% rollout should always be disabled")
	}
	if m.Enabled("broken", "u1") {
		t.Fatal("unparsable percentage must be disabled")
	}

	first := m.Enabled("canary", "user-42")
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", "user-42"); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.Enabled("canary", "") {
		t.Fatal("percentage rollout requires a user id")
	}
}

func TestEnabled_NilManager(t *testing.T) {
	var m *Manager
	if m.Enabled("anything", "u1") {
		t.Fatal("nil manager must report every flag disabled")
	}
	if len(m.Raw()) != 0 {
		t.Fatal("nil manager must have no raw flags")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot("u123")
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
	if !snap["x"] || snap["z"] {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}
