package state

import "github.com/dmitrijs2005/acadcart/internal/client/models"

// UserList is the gated resource list. Loaded with an empty Users and no
// Err means the service has no users; a non-empty Err is a fetch failure.
type UserList struct {
	Users  []models.User
	Err    string
	Loaded bool
}

func (l UserList) Fetched(users []models.User) UserList {
	if users == nil {
		users = []models.User{}
	}
	return UserList{Users: users, Loaded: true}
}

func (l UserList) FetchFailed(msg string) UserList {
	return UserList{Users: []models.User{}, Err: msg, Loaded: true}
}
