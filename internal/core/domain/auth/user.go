package auth

import "slices"

// PurposeAuth is the only token purpose issued by this service.
const PurposeAuth = "auth"

// Token is a signed credential registered against a user. A token stays valid
// only while it is present in the owning user's token list.
type Token struct {
	Access string `json:"access"`
	Value  string `json:"token"`
}

// User is an account. The password hash and token list never leave the
// service in responses.
type User struct {
	ID           string  `json:"_id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Tokens       []Token `json:"-"`
}

// HasToken reports whether value is registered on the user for the given purpose.
func (u User) HasToken(purpose, value string) bool {
	if value == "" {
		return false
	}
	return slices.ContainsFunc(u.Tokens, func(t Token) bool {
		return t.Access == purpose && t.Value == value
	})
}

// Identity is the authenticated caller resolved by the guard: the user record
// plus the exact token presented on this request.
type Identity struct {
	User  User
	Token string
}

// Claims are the fields a token binds together under its signature.
type Claims struct {
	UserID  string
	Purpose string
}
