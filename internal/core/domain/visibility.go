package domain

import (
	"sort"
	"strings"

	"github.com/bings/visallo/internal/apperrors"
)

// VisibilityLabel is the access-control tag attached to a graph element or
// property. It is a closed value type: an empty workspace set means the value is
// fully public, a non-empty set restricts reads to authorizations holding one of
// the listed workspace ids. Source is a free-text provenance annotation that is
// cleared when a change is published.
//
// Labels are value-equal and order-independent; the workspace set is kept sorted
// and de-duplicated so two labels describing the same scope always compare equal.
type VisibilityLabel struct {
	Workspaces []string `json:"workspaces"`
	Source     string   `json:"source,omitempty"`
}

// PublicVisibility returns the label readable by everyone.
func PublicVisibility() VisibilityLabel {
	return VisibilityLabel{}
}

// NewSandboxVisibility derives the label used for a new sandboxed write: the base
// label's workspace set plus workspaceID. A blank workspace id fails with an
// EncodingError rather than falling through to a public label, which would leak
// the private edit.
func NewSandboxVisibility(base VisibilityLabel, workspaceID string) (VisibilityLabel, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return VisibilityLabel{}, apperrors.NewEncodingError("workspace id is blank, refusing to construct a sandbox visibility")
	}
	label := VisibilityLabel{
		Workspaces: normalizeWorkspaceSet(append(append([]string{}, base.Workspaces...), workspaceID)),
		Source:     base.Source,
	}
	return label, nil
}

// ToPublicVisibility returns the label with workspaceID removed from the
// workspace set and the source annotation cleared. This is the label a committed
// revision carries after publish.
func (l VisibilityLabel) ToPublicVisibility(workspaceID string) VisibilityLabel {
	remaining := make([]string, 0, len(l.Workspaces))
	for _, ws := range l.Workspaces {
		if ws != workspaceID {
			remaining = append(remaining, ws)
		}
	}
	return VisibilityLabel{Workspaces: normalizeWorkspaceSet(remaining)}
}

// ToFullyPublic clears the entire workspace set and the source annotation.
func (l VisibilityLabel) ToFullyPublic() VisibilityLabel {
	return VisibilityLabel{}
}

// IsPublic reports whether the label restricts no one.
func (l VisibilityLabel) IsPublic() bool {
	return len(l.Workspaces) == 0
}

// HasWorkspace reports whether workspaceID is part of the label's workspace set.
func (l VisibilityLabel) HasWorkspace(workspaceID string) bool {
	for _, ws := range l.Workspaces {
		if ws == workspaceID {
			return true
		}
	}
	return false
}

// Visible reports whether a reader holding auths may see a value carrying this
// label. Public labels are visible to everyone; scoped labels require at least
// one matching authorization.
func (l VisibilityLabel) Visible(auths Authorizations) bool {
	if l.IsPublic() {
		return true
	}
	for _, ws := range l.Workspaces {
		if auths.Has(ws) {
			return true
		}
	}
	return false
}

// Equal reports value equality, ignoring workspace set ordering.
func (l VisibilityLabel) Equal(other VisibilityLabel) bool {
	if l.Source != other.Source {
		return false
	}
	a := normalizeWorkspaceSet(l.Workspaces)
	b := normalizeWorkspaceSet(other.Workspaces)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func normalizeWorkspaceSet(workspaces []string) []string {
	if len(workspaces) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(workspaces))
	out := make([]string, 0, len(workspaces))
	for _, ws := range workspaces {
		if ws == "" {
			continue
		}
		if _, ok := seen[ws]; ok {
			continue
		}
		seen[ws] = struct{}{}
		out = append(out, ws)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Authorizations is the set of visibility scopes a read operation is permitted
// to see. The zero value sees only public data.
type Authorizations []string

// NewAuthorizations builds an authorization set from the given scopes.
func NewAuthorizations(scopes ...string) Authorizations {
	return Authorizations(scopes)
}

// Has reports whether the set contains the given scope.
func (a Authorizations) Has(scope string) bool {
	for _, s := range a {
		if s == scope {
			return true
		}
	}
	return false
}

// SandboxStatus is the derived classification of a property value relative to a
// requesting workspace. It is never persisted.
type SandboxStatus string

const (
	// SandboxStatusPublic means the value is globally visible.
	SandboxStatusPublic SandboxStatus = "PUBLIC"
	// SandboxStatusPublicChanged means a public value exists but the requesting
	// workspace holds an unpublished override for the same (key, name).
	SandboxStatusPublicChanged SandboxStatus = "PUBLIC_CHANGED"
	// SandboxStatusPrivate means the value exists only inside the requesting workspace.
	SandboxStatusPrivate SandboxStatus = "PRIVATE"
)
