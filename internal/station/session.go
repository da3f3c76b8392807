package station

// Role is the authorization level of the logged-in operator.
type Role string

const (
	// RoleAdmin may arm, disarm, reconfigure and run destructive actions.
	RoleAdmin Role = "Admin"
	// RoleSupervisor may start a module on an idle station but may not
	// override or stop one that is already armed.
	RoleSupervisor Role = "Supervisor"
)

// Session holds the authenticated identity and the opaque authorization
// token. Exactly one session exists per controller instance; it is created
// by the login flow and read by every other component.
type Session struct {
	Identity string
	Role     Role
	Token    string
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// IsAdmin reports whether the session belongs to an Admin.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
