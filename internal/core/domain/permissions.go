package domain

// AllDashboards is the sentinel a caller may request instead of enumerating
// every dashboard. It expands at write time and is never stored literally.
const AllDashboards = "All Dashboard"

// catalog is the fixed set of dashboard identifiers the system recognises.
var catalog = []string{
	"dashboard1",
	"dashboard2",
	"dashboard3",
	"dashboard4",
	"dashboard5",
	"dashboard6",
}

// Catalog returns a copy of the full dashboard catalog.
func Catalog() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// NormalizePermissions expands the AllDashboards sentinel to the full catalog
// and collapses duplicates. Identifiers outside the catalog pass through
// unchanged; filtering unknowns is the caller's job, matching how exported
// data has always been written.
func NormalizePermissions(requested []string) []string {
	for _, p := range requested {
		if p == AllDashboards {
			return Catalog()
		}
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, p := range requested {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SamePermissions compares two permission sets order-insensitively.
func SamePermissions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, p := range a {
		set[p]++
	}
	for _, p := range b {
		set[p]--
		if set[p] < 0 {
			return false
		}
	}
	return true
}
