package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/storage"
	"github.com/julianstephens/orbitflow/internal/validation"
)

type Bookmarks struct {
	store     storage.Provider
	validator *validation.Validator
	now       func() time.Time
}

func NewBookmarks(store storage.Provider) *Bookmarks {
	return &Bookmarks{store: store, validator: validation.New(), now: time.Now}
}

func (s *Bookmarks) Add(ctx context.Context, ownerID, title, url, description string) (models.Bookmark, error) {
	b, err := s.validator.Bookmark(models.Bookmark{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		URL:         url,
		Description: description,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return models.Bookmark{}, err
	}
	if err := s.store.AddBookmark(ctx, b); err != nil {
		return models.Bookmark{}, errors.Upstream("add bookmark", err)
	}
	return b, nil
}

// List returns the owner's bookmarks, newest first. A non-empty query
// restricts the list to titles starting with it, ignoring case.
func (s *Bookmarks) List(ctx context.Context, ownerID, query string) ([]models.Bookmark, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	var (
		list []models.Bookmark
		err  error
	)
	if query == "" {
		list, err = s.store.GetAllBookmarks(ctx, ownerID)
	} else {
		list, err = s.store.SearchBookmarks(ctx, ownerID, query)
	}
	if err != nil {
		return nil, errors.Upstream("load bookmarks", err)
	}
	return list, nil
}

func (s *Bookmarks) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteBookmark(ctx, ownerID, id); err != nil {
		return errors.Upstream("delete bookmark", err)
	}
	return nil
}
