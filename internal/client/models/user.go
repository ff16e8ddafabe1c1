// Package models defines the client-side records exchanged with the
// acadcart service and persisted between runs.
package models

import (
	"encoding/json"
	"time"
)

// User is a profile record as returned by the service.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts both "id" and the document-store style "_id".
// A missing or unparsable createdAt leaves CreatedAt zero.
func (u *User) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		MongoID   string          `json:"_id"`
		Username  string          `json:"username"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	u.ID = raw.ID
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	u.Username = raw.Username
	u.CreatedAt = time.Time{}
	if len(raw.CreatedAt) > 0 {
		var ts time.Time
		if err := json.Unmarshal(raw.CreatedAt, &ts); err == nil {
			u.CreatedAt = ts
		}
	}
	return nil
}

// Credentials is the body of the login and register calls.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the success body of the login call.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// HealthResponse is the body of the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
