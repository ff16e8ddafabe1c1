package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/acadcart/internal/client/migrations"
	"github.com/dmitrijs2005/acadcart/internal/client/models"
	"github.com/dmitrijs2005/acadcart/internal/dbx"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNoSession is returned by Load when no complete session is stored.
var ErrNoSession = errors.New("no stored session")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := dbx.OpenSQLite(ctx, path, migrations.Migrations)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the credential and the profile together.
func (s *Store) Save(ctx context.Context, sess models.Session) error {
	if !sess.Valid() {
		return errors.New("save session: token and user are required")
	}
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewRepo(tx)
		if err := repo.Set(ctx, KeyToken, []byte(sess.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, user)
	})
}

// Load returns the stored session. A lone token or a lone profile counts
// as no session; an unreadable profile is reported as an error.
func (s *Store) Load(ctx context.Context) (models.Session, error) {
	var sess models.Session

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewRepo(tx)
		token, err := repo.Get(ctx, KeyToken)
		if err != nil {
			return err
		}
		rawUser, err := repo.Get(ctx, KeyUser)
		if err != nil {
			return err
		}
		if len(token) == 0 || len(rawUser) == 0 {
			return ErrNoSession
		}

		var u models.User
		if err := json.Unmarshal(rawUser, &u); err != nil {
			return fmt.Errorf("decode stored user: %w", err)
		}
		sess = models.Session{Token: string(token), User: &u}
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// Clear removes both keys.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewRepo(tx)
		if err := repo.Delete(ctx, KeyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, KeyUser)
	})
}
