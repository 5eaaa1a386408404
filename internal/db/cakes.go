package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/models"
)

const cakeColumns = `id, name, description, category, images, featured, created_at`

// ListCakes returns cakes matching q, newest first.
func (s *Store) ListCakes(ctx context.Context, q backend.CakeQuery) ([]models.Cake, error) {
	var (
		where []string
		args  []any
	)
	if q.FeaturedOnly {
		where = append(where, "featured = ?")
		args = append(args, true)
	}
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(q.Category))
	}

	query := `SELECT ` + cakeColumns + ` FROM cakes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list cakes: %w", err)
	}
	defer rows.Close()

	list := make([]models.Cake, 0, 16)
	for rows.Next() {
		var (
			c         models.Cake
			category  string
			images    string
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &category, &images, &c.Featured, &createdAt); err != nil {
			return nil, fmt.Errorf("scan cake: %w", err)
		}
		if err := json.Unmarshal([]byte(images), &c.Images); err != nil {
			return nil, fmt.Errorf("decode images of cake %s: %w", c.ID, err)
		}
		c.Category = models.Category(category)
		c.CreatedAt = fromMillis(createdAt)
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cakes: %w", err)
	}
	return list, nil
}

// InsertCake stores a new cake and returns it with id and timestamp filled in.
func (s *Store) InsertCake(ctx context.Context, cake models.Cake) (models.Cake, error) {
	cake.Name = strings.TrimSpace(cake.Name)
	if cake.Name == "" {
		return models.Cake{}, fmt.Errorf("insert cake: name is required")
	}
	if cake.Category == "" {
		return models.Cake{}, fmt.Errorf("insert cake: category is required")
	}
	if cake.ID == "" {
		cake.ID = uuid.NewString()
	}
	if cake.CreatedAt.IsZero() {
		cake.CreatedAt = s.timestamp()
	}
	if cake.Images == nil {
		cake.Images = []string{}
	}
	images, err := json.Marshal(cake.Images)
	if err != nil {
		return models.Cake{}, fmt.Errorf("encode images: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO cakes (`+cakeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		cake.ID, cake.Name, cake.Description, string(cake.Category), string(images), cake.Featured, toMillis(cake.CreatedAt),
	)
	if err != nil {
		return models.Cake{}, fmt.Errorf("insert cake: %w", err)
	}
	cake.CreatedAt = cake.CreatedAt.UTC().Truncate(time.Millisecond)
	return cake, nil
}
