package sqlstore

import (
	"context"
	"strings"

	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/storage"
)

func (s *Store) AddOwner(ctx context.Context, o models.Owner) error {
	_, err := s.exec(ctx, "add owner", `
		INSERT INTO owners (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		o.ID, strings.ToLower(o.Email), o.PasswordHash, storage.FormatTime(o.CreatedAt))
	return err
}

func (s *Store) GetOwner(ctx context.Context, id string) (models.Owner, error) {
	return s.getOwner(ctx, "id", id)
}

func (s *Store) GetOwnerByEmail(ctx context.Context, email string) (models.Owner, error) {
	return s.getOwner(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) getOwner(ctx context.Context, column, value string) (models.Owner, error) {
	row, err := s.queryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM owners WHERE `+column+` = ?`, value)
	if err != nil {
		return models.Owner{}, err
	}

	var o models.Owner
	var createdAt string
	if err := row.Scan(&o.ID, &o.Email, &o.PasswordHash, &createdAt); err != nil {
		return models.Owner{}, scanErr("get owner", "owner", value, err)
	}
	if o.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return models.Owner{}, err
	}
	return o, nil
}
