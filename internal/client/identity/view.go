package identity

// View is the presentation capability the resolver drives.
type View interface {
	Render(State)
}

// ViewFunc renders as a function of the live state.
type ViewFunc func(State)

func (f ViewFunc) Render(s State) { f(s) }

type staticView struct {
	render func()
}

// Static wraps fixed content that does not depend on who is logged in. It is
// rendered whenever the resolver is authenticated with a resolved profile.
func Static(render func()) View {
	return staticView{render: render}
}

func (v staticView) Render(s State) {
	if s.Status == StatusAuthenticated && !s.ProfilePending() {
		v.render()
	}
}
