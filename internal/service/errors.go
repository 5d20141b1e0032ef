package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalid           = errors.New("invalid input")
	ErrInUse             = errors.New("still referenced")
	ErrConflict          = errors.New("already exists")
	ErrAlreadyInCookbook = errors.New("all recipes are already in this cookbook")
	ErrNotInCookbook     = errors.New("recipe is not in this cookbook")
	ErrInvalidOrder      = errors.New("invalid order")
)

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return err
}
