package auth

// Identity is the profile the backend associates with a session.
type Identity struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Session pairs an identity with its opaque bearer token. The token contents
// are never inspected here.
type Session struct {
	Identity Identity `json:"identity"`
	Token    string   `json:"token"`
}

// wellFormed reports whether a session restored from storage is usable.
func (s Session) wellFormed() bool {
	return s.Token != "" && s.Identity.Email != ""
}

// Credentials is a password login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is an account creation request. It produces no session;
// callers log in separately after a successful registration.
type Registration struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// State is the manager's position in the session lifecycle.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
