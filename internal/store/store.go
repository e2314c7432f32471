package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced row does not exist. The HTTP
// layer maps it to a 404; a scheduler tick treats it as a permanent failure.
var ErrNotFound = errors.New("store: record not found")

// Store is the gorm-backed repository shared by all components. The handle is
// injected at construction; nothing in the module reaches for a package-level
// database.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
