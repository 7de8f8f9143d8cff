package sqlstore

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/storage"
)

const bookmarkColumns = "id, owner_id, title, title_lower, url, description, created_at"

func scanBookmark(row rowScanner) (models.Bookmark, error) {
	var b models.Bookmark
	var createdAt string
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Title, &b.TitleLower, &b.URL, &b.Description, &createdAt); err != nil {
		return models.Bookmark{}, err
	}
	var err error
	if b.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return models.Bookmark{}, err
	}
	return b, nil
}

func (s *Store) AddBookmark(ctx context.Context, b models.Bookmark) error {
	if b.TitleLower == "" {
		b.TitleLower = strings.ToLower(b.Title)
	}
	_, err := s.exec(ctx, "add bookmark", `
		INSERT INTO bookmarks (`+bookmarkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.OwnerID, b.Title, b.TitleLower, b.URL, b.Description, storage.FormatTime(b.CreatedAt))
	return err
}

func (s *Store) listBookmarks(ctx context.Context, query string, args ...any) ([]models.Bookmark, error) {
	rows, err := s.query(ctx, "list bookmarks", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := []models.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, scanErr("list bookmarks", "bookmark", "", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, scanErr("list bookmarks", "bookmark", "", err)
	}
	return bookmarks, nil
}

func (s *Store) GetAllBookmarks(ctx context.Context, ownerID string) ([]models.Bookmark, error) {
	return s.listBookmarks(ctx, `
		SELECT `+bookmarkColumns+`
		FROM bookmarks WHERE owner_id = ?
		ORDER BY created_at DESC, id`, ownerID)
}

// SearchBookmarks matches a prefix of title_lower. substr counts characters
// in both dialects, so multi-byte prefixes compare correctly.
func (s *Store) SearchBookmarks(ctx context.Context, ownerID, prefix string) ([]models.Bookmark, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return s.GetAllBookmarks(ctx, ownerID)
	}
	return s.listBookmarks(ctx, `
		SELECT `+bookmarkColumns+`
		FROM bookmarks WHERE owner_id = ? AND substr(title_lower, 1, ?) = ?
		ORDER BY created_at DESC, id`, ownerID, utf8.RuneCountInString(prefix), prefix)
}

func (s *Store) DeleteBookmark(ctx context.Context, ownerID, id string) error {
	return s.execOne(ctx, "delete bookmark", "bookmark", id,
		`DELETE FROM bookmarks WHERE id = ? AND owner_id = ?`, id, ownerID)
}
