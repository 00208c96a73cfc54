package docstore

import "strings"

// Role is a permission subject: everybody or one user
type Role string

// Any grants an action to everybody, including anonymous callers
const Any Role = "any"

// User grants an action to a single user
func User(userID string) Role {
	return Role("user:" + userID)
}

// Actions
const (
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Permission is assigned per document at create time
type Permission struct {
	Action string `json:"action"`
	Role   Role   `json:"role"`
}

func Read(r Role) Permission   { return Permission{Action: ActionRead, Role: r} }
func Update(r Role) Permission { return Permission{Action: ActionUpdate, Role: r} }
func Delete(r Role) Permission { return Permission{Action: ActionDelete, Role: r} }

// OwnerPermissions is the usual set: public read, owner update & delete
func OwnerPermissions(userID string) []Permission {
	return []Permission{
		Read(Any),
		Update(User(userID)),
		Delete(User(userID)),
	}
}

// PublicRead is the unprivileged permission set
func PublicRead() []Permission {
	return []Permission{Read(Any)}
}

// String renders the stored form, eg. update(user:42)
func (p Permission) String() string {
	return p.Action + "(" + string(p.Role) + ")"
}

// ParsePermission reads the stored form back
func ParsePermission(s string) (Permission, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return Permission{}, false
	}
	return Permission{Action: s[:open], Role: Role(s[open+1 : len(s)-1])}, true
}

// grants lists the stored permission strings which allow action for userID
func grants(action string, userID string) []string {
	g := []string{Permission{Action: action, Role: Any}.String()}
	if userID != "" {
		g = append(g, Permission{Action: action, Role: User(userID)}.String())
	}
	return g
}

func allowed(perms []Permission, action string, userID string) bool {
	for _, p := range perms {
		if p.Action != action {
			continue
		}
		if p.Role == Any || (userID != "" && p.Role == User(userID)) {
			return true
		}
	}
	return false
}

// checkCreate rejects permission sets that name another user than the caller
func checkCreate(perms []Permission, userID string) error {
	for _, p := range perms {
		if p.Role == Any {
			continue
		}
		if userID == "" || p.Role != User(userID) {
			return errUnauthorized("permissions must only reference roles of the current user")
		}
	}
	return nil
}
