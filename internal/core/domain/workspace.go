package domain

import "time"

// WorkspaceIDPrefix prefixes every workspace id. The id doubles as the graph
// authorization scope registered with the storage layer, so the prefix keeps
// workspace scopes out of the way of any other authorization strings.
const WorkspaceIDPrefix = "WORKSPACE_"

// Workspace is an isolated sandbox in which a group of users makes private edits
// to graph entities before publishing them.
type Workspace struct {
	WorkspaceID   string `json:"workspaceID"`
	DisplayTitle  string `json:"displayTitle"`
	CreatorUserID string `json:"creatorUserID"` // Owner; holds implicit admin rights
	AuditFields
}

// WorkspaceAccess is the ordered access level a user holds on a workspace.
type WorkspaceAccess string

const (
	AccessNone  WorkspaceAccess = "NONE"
	AccessRead  WorkspaceAccess = "READ"
	AccessWrite WorkspaceAccess = "WRITE"
)

// rank orders access levels so Satisfies can compare them.
func (a WorkspaceAccess) rank() int {
	switch a {
	case AccessRead:
		return 1
	case AccessWrite:
		return 2
	default:
		return 0
	}
}

// Satisfies reports whether access level a grants at least the required level.
func (a WorkspaceAccess) Satisfies(required WorkspaceAccess) bool {
	return a.rank() >= required.rank()
}

// WorkspaceUser is the membership of a user in a workspace. At most one access
// level exists per (workspace, user) pair.
type WorkspaceUser struct {
	WorkspaceID string          `json:"workspaceID"`
	UserID      string          `json:"userID"`
	Access      WorkspaceAccess `json:"access"`
	IsCreator   bool            `json:"isCreator"`
	JoinedAt    time.Time       `json:"joinedAt"`
}

// UpdateUserOnWorkspaceResult tells the caller whether a membership grant was
// newly created or an existing grant's level changed.
type UpdateUserOnWorkspaceResult string

const (
	UpdateUserOnWorkspaceResultAdd    UpdateUserOnWorkspaceResult = "ADD"
	UpdateUserOnWorkspaceResultUpdate UpdateUserOnWorkspaceResult = "UPDATE"
)

// WorkspaceEntity relates a workspace to a graph element it has been used to
// edit. It is created the first time a workspace-scoped mutation touches the
// element and removed only when the workspace is deleted.
type WorkspaceEntity struct {
	WorkspaceID string      `json:"workspaceID"`
	ElementType ElementType `json:"elementType"`
	ElementID   string      `json:"elementID"`
	CreatedAt   time.Time   `json:"createdAt"`
}
