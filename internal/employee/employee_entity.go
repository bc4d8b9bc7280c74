package employee

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NoName is shown when an employee has neither a name nor a handle.
const NoName = "—"

type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DisplayName is "last first", falling back to the email, then the
// username, then NoName.
func DisplayName(r RemoteEmployee) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{r.LastName.Trimmed(), r.FirstName.Trimmed()} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if name := strings.TrimSpace(strings.Join(parts, " ")); name != "" {
		return norm.NFC.String(name)
	}
	if email := r.Email.Trimmed(); email != "" {
		return email
	}
	if username := r.Username.Trimmed(); username != "" {
		return username
	}
	return NoName
}

// Normalize turns backend employees into directory entries: ids are
// deduplicated (first wins), rows without an id are dropped and the result
// is sorted alphabetically under Russian collation.
func Normalize(raw []RemoteEmployee) []Employee {
	seen := make(map[string]struct{}, len(raw))
	out := make([]Employee, 0, len(raw))
	for _, r := range raw {
		id := r.ID.Trimmed()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Employee{ID: id, Name: DisplayName(r)})
	}

	SortByName(out)
	return out
}

func SortByName(emps []Employee) {
	c := collate.New(language.Russian)
	sort.SliceStable(emps, func(i, j int) bool {
		return c.CompareString(emps[i].Name, emps[j].Name) < 0
	})
}

// Index maps employee id to position for quick lookups.
func Index(emps []Employee) map[string]Employee {
	idx := make(map[string]Employee, len(emps))
	for _, e := range emps {
		idx[e.ID] = e
	}
	return idx
}
