// Package cli is the interactive shiftdesk console.
//
// It wires configuration, the session store, the gRPC client and the
// identity resolver, then runs a REPL. The resolver decides which screen is
// shown: a login or signup prompt while signed out, the staff shell once a
// profile is resolved. The REPL only feeds user input back into it.
//
// Commands:
//
//	login    authenticate with username and password
//	signup   create an account and sign in
//	switch   toggle between the login and signup screens
//	whoami   show the current profile and its capabilities
//	logout   end the session
//	help     list commands
//	exit     leave the console (the persisted session is kept)
package cli
