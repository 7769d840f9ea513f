package models

const (
	RoleAdmin = "Administrador"
	RoleUser  = "Usuario"
)

// User is one of the allow-listed collaborators of the shared workspace.
type User struct {
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Role     string `json:"role" yaml:"role"`
}

// Session describes the signed-in collaborator for the current request or login.
type Session struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResult is returned after a successful password sign-in.
type LoginResult struct {
	IDToken      string  `json:"idToken"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresIn    string  `json:"expiresIn"`
	Session      Session `json:"session"`
}
