package domain

// TokenPair is returned to the client on login. Nothing about it is stored
// server-side.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenSubject is the identity embedded in both tokens.
type TokenSubject struct {
	UserID string
	Email  string
	Role   Role
}
