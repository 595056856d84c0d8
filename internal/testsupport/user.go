package testsupport

import "net/http"

// User is a fixed-credential auth.User for tests. The fake Service keys
// fragment ownership on the Authorization value, so Owner is what Seed expects.
type User struct {
	Name string
}

// NewUser returns a user whose bearer token is its name.
func NewUser(name string) User { return User{Name: name} }

func (u User) AuthorizationHeaders() http.Header {
	h := make(http.Header, 1)
	h.Set("Authorization", u.Owner())
	return h
}

func (u User) Username() string { return u.Name }

// Owner is the ownerId the fake service assigns to this user's fragments.
func (u User) Owner() string { return "Bearer " + u.Name }
