package store

import (
	"errors"

	"github.com/sirupsen/logrus"
	supa "github.com/supabase-community/supabase-go"
)

// ErrNotFound is returned when an entity does not exist or is not owned
// by the requesting user. The two cases are deliberately
// indistinguishable so a caller can never probe for rows owned by
// someone else.
var ErrNotFound = errors.New("record not found")

// Store wraps the Supabase client with owner-scoped data access. Every
// query on a user-owned table carries an Eq("user_id", ...) filter;
// the only exception is the public-project read path.
//
// Underlying storage errors are logged here in full and wrapped; the
// HTTP layer maps anything that is not ErrNotFound to a generic
// internal error message.
type Store struct {
	db  *supa.Client
	log *logrus.Logger
}

// New creates a Store around an initialized Supabase client.
func New(db *supa.Client, log *logrus.Logger) *Store {
	return &Store{db: db, log: log}
}
