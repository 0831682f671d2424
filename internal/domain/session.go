package domain

// Session is the locally tracked login state. There is no token; the backend
// keys user data by username.
type Session struct {
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// IsAuthenticated reports whether the session can be used for user-data calls.
func (s Session) IsAuthenticated() bool {
	return s.IsLoggedIn && s.Username != ""
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
}

// Validate checks that both username and password are present.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return &ValidationError{Field: "username", Reason: "required"}
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	return nil
}
