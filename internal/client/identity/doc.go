// Package identity resolves who is using the console.
//
// A Resolver starts in StatusLoading, consults the session store once and
// settles in StatusUnauthenticated or StatusAuthenticated. Authenticated
// sessions may briefly carry no profile (ProfilePending) while it is fetched
// from the remote store; the fetch either resolves it or forces the resolver
// back to StatusUnauthenticated and clears the persisted record.
//
// Every Login, Signup and Logout supersedes whatever resolution is in flight:
// a result that arrives for a superseded generation is dropped. Logout never
// waits on the network.
//
// Presentation code observes the resolver through Subscribe. A View is
// rendered with the current State on subscription and after every change;
// use ViewFunc for state-driven views and Static for fixed content shown to
// authenticated users.
package identity
