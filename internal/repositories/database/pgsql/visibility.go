package pgsql

import (
	"encoding/json"
	"sort"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
)

// visibilityParam marshals a visibility label into its canonical jsonb form:
// workspace set sorted and de-duplicated, empty set encoded as [] rather than
// null. Canonical encoding makes jsonb equality usable as the revision
// coordinate in unique indexes and delete predicates.
func visibilityParam(v domain.VisibilityLabel) ([]byte, error) {
	ws := make([]string, 0, len(v.Workspaces))
	seen := make(map[string]struct{}, len(v.Workspaces))
	for _, w := range v.Workspaces {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		ws = append(ws, w)
	}
	sort.Strings(ws)

	data, err := json.Marshal(domain.VisibilityLabel{Workspaces: ws, Source: v.Source})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to encode visibility label", err)
	}
	return data, nil
}

// visibleClause is the SQL predicate deciding whether a visibility label stored
// in the named jsonb column is readable by the authorizations bound to the
// given positional parameter (a text[]). A label with an empty workspace set is
// public; otherwise at least one workspace id must be held.
func visibleClause(column, authsParam string) string {
	return "(" + column + "->'workspaces' = '[]'::jsonb OR " + column + "->'workspaces' ?| " + authsParam + ")"
}
