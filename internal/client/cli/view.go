package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrijs2005/shiftdesk/internal/client/identity"
)

// screenView draws the screen selected by the resolver state.
func screenView(w io.Writer) identity.View {
	return identity.ViewFunc(func(s identity.State) {
		fmt.Fprintln(w, screen(s))
	})
}

func screen(s identity.State) string {
	switch {
	case s.Status == identity.StatusLoading:
		return "Restoring session..."
	case s.Status == identity.StatusUnauthenticated && s.Mode == identity.ModeSignup:
		return "Create an account: type 'signup', or 'switch' to log in."
	case s.Status == identity.StatusUnauthenticated:
		return "Please log in: type 'login', or 'switch' to create an account."
	case s.ProfilePending():
		return fmt.Sprintf("Signed in as %s, loading profile...", s.Identity.UID)
	default:
		return fmt.Sprintf("Welcome, %s (%s). Type 'help' for commands.", s.Profile.DisplayName, s.Profile.Role)
	}
}

// promptStatus is the short form shown in the REPL prompt.
func promptStatus(s identity.State) string {
	switch {
	case s.Status == identity.StatusAuthenticated && s.Profile != nil:
		return fmt.Sprintf("(%s %s)", s.Profile.DisplayName, s.Profile.Role)
	case s.Status == identity.StatusAuthenticated:
		return fmt.Sprintf("(%s loading)", s.Identity.UID)
	case s.Status == identity.StatusUnauthenticated:
		return "(" + s.Mode.String() + ")"
	default:
		return "(" + s.Status.String() + ")"
	}
}

func writeProfile(w io.Writer, sess identity.Session) {
	p := sess.Profile
	fmt.Fprintf(w, "uid:          %s\n", sess.Identity.UID)
	fmt.Fprintf(w, "name:         %s\n", p.DisplayName)
	fmt.Fprintf(w, "role:         %s\n", p.Role)

	caps := make([]string, 0, len(sess.Capabilities()))
	for _, c := range sess.Capabilities() {
		caps = append(caps, string(c))
	}
	fmt.Fprintf(w, "capabilities: %s\n", strings.Join(caps, ", "))

	for _, k := range slices.Sorted(maps.Keys(p.Attributes)) {
		fmt.Fprintf(w, "  %s = %s\n", k, p.Attributes[k])
	}
}
