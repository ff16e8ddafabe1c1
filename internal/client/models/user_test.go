package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalJSON(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want User
	}{
		{
			name: "plain id",
			in:   `{"id":"u1","username":"alice","createdAt":"2024-03-01T10:00:00Z"}`,
			want: User{ID: "u1", Username: "alice", CreatedAt: created},
		},
		{
			name: "underscore id",
			in:   `{"_id":"65f0","username":"bob","createdAt":"2024-03-01T10:00:00Z"}`,
			want: User{ID: "65f0", Username: "bob", CreatedAt: created},
		},
		{
			name: "id wins over _id",
			in:   `{"id":"a","_id":"b","username":"c"}`,
			want: User{ID: "a", Username: "c"},
		},
		{
			name: "bad timestamp is ignored",
			in:   `{"id":"u2","username":"dave","createdAt":"yesterday"}`,
			want: User{ID: "u2", Username: "dave"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.in), &u))
			assert.Equal(t, tt.want, u)
		})
	}
}

func TestUser_UnmarshalJSON_NotAnObject(t *testing.T) {
	var u User
	require.Error(t, json.Unmarshal([]byte(`[1,2]`), &u))
}

func TestSession_Valid(t *testing.T) {
	assert.False(t, Session{}.Valid())
	assert.False(t, Session{Token: "t"}.Valid())
	assert.False(t, Session{User: &User{ID: "1"}}.Valid())
	assert.True(t, Session{Token: "t", User: &User{ID: "1"}}.Valid())
}
