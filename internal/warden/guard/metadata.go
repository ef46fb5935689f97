package guard

// RouteMeta declares what an operation demands from a caller. Metadata is
// attached per route; the zero value is a private route with no role or
// permission requirements, which any authenticated active user may call.
type RouteMeta struct {
	// Public overrides the group default when set. A route can opt out of
	// authentication on a private group, or opt back in on a public one.
	Public *bool

	// GroupPublic is the default inherited from the route's group when the
	// route itself does not say.
	GroupPublic bool

	// Roles the caller's role name must be among, when non-empty. Checked
	// per route only; groups carry no role defaults.
	Roles []string

	// Permissions the caller must hold every one of, when non-empty. Checked
	// per route only, like Roles.
	Permissions []string
}

// IsPublic resolves the bypass flag: the route's own setting wins, the group
// default fills in when the route is silent.
func (m RouteMeta) IsPublic() bool {
	if m.Public != nil {
		return *m.Public
	}
	return m.GroupPublic
}

// Bool is a convenience for populating RouteMeta.Public inline.
func Bool(v bool) *bool { return &v }
