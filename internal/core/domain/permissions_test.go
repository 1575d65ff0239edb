package domain

import (
	"testing"
)

func TestNormalizePermissions_SentinelExpandsToCatalog(t *testing.T) {
	got := NormalizePermissions([]string{"dashboard2", AllDashboards, "bogus"})
	want := Catalog()

	if !SamePermissions(got, want) {
		t.Fatalf("expected full catalog, got %v", got)
	}
}

func TestNormalizePermissions_SentinelAlone(t *testing.T) {
	got := NormalizePermissions([]string{AllDashboards})
	if len(got) != 6 {
		t.Fatalf("expected 6 dashboards, got %d", len(got))
	}
	for _, p := range got {
		if p == AllDashboards {
			t.Fatalf("sentinel must never be stored literally: %v", got)
		}
	}
}

func TestNormalizePermissions_CollapsesDuplicates(t *testing.T) {
	got := NormalizePermissions([]string{"dashboard1", "dashboard1", "dashboard3"})
	if len(got) != 2 {
		t.Fatalf("expected duplicates collapsed, got %v", got)
	}
}

func TestNormalizePermissions_UnknownIdentifiersPassThrough(t *testing.T) {
	got := NormalizePermissions([]string{"dashboard1", "not-a-dashboard"})
	if !SamePermissions(got, []string{"dashboard1", "not-a-dashboard"}) {
		t.Fatalf("unknown identifiers must pass through unchanged, got %v", got)
	}
}

func TestNormalizePermissions_EmptyInput(t *testing.T) {
	if got := NormalizePermissions(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestSamePermissions_OrderInsensitive(t *testing.T) {
	a := []string{"dashboard1", "dashboard2"}
	b := []string{"dashboard2", "dashboard1"}
	if !SamePermissions(a, b) {
		t.Fatal("expected order-insensitive equality")
	}
	if SamePermissions(a, []string{"dashboard1"}) {
		t.Fatal("expected inequality for different lengths")
	}
	if SamePermissions(a, []string{"dashboard1", "dashboard3"}) {
		t.Fatal("expected inequality for different members")
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0] = "mutated"
	if Catalog()[0] != "dashboard1" {
		t.Fatal("Catalog must not expose internal state")
	}
}
