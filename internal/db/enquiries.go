package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/models"
)

// Колонки, по которым разрешена сортировка.
var enquiryOrder = map[string]string{
	"created_at": "e.created_at",
	"name":       "e.name",
	"email":      "e.email",
	"phone":      "e.phone",
}

// InsertEnquiry stores one enquiry. A missing cake yields backend.ErrNotFound.
func (s *Store) InsertEnquiry(ctx context.Context, e models.Enquiry) (models.Enquiry, error) {
	if strings.TrimSpace(e.CakeID) == "" {
		return models.Enquiry{}, fmt.Errorf("insert enquiry: cake id is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.timestamp()
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO enquiries (id, cake_id, name, email, phone, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.CakeID, e.Name, e.Email, e.Phone, e.Message, toMillis(e.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Enquiry{}, fmt.Errorf("insert enquiry: cake %s: %w", e.CakeID, backend.ErrNotFound)
		}
		return models.Enquiry{}, fmt.Errorf("insert enquiry: %w", err)
	}
	e.CreatedAt = e.CreatedAt.UTC().Truncate(time.Millisecond)
	return e, nil
}

// ListEnquiries returns all enquiries in the requested order. With
// IncludeCake each row carries its cake's name and category.
func (s *Store) ListEnquiries(ctx context.Context, q backend.EnquiryQuery) ([]models.EnquiryRow, error) {
	column := "created_at"
	if q.OrderBy != "" {
		column = q.OrderBy
	}
	orderExpr, ok := enquiryOrder[column]
	if !ok {
		return nil, fmt.Errorf("list enquiries: unsupported order column %q", column)
	}
	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}

	query := `SELECT e.id, e.cake_id, e.name, e.email, e.phone, e.message, e.created_at, '', '' FROM enquiries e`
	if q.IncludeCake {
		query = `SELECT e.id, e.cake_id, e.name, e.email, e.phone, e.message, e.created_at,
		        COALESCE(c.name, ''), COALESCE(c.category, '')
		   FROM enquiries e
		   LEFT JOIN cakes c ON c.id = e.cake_id`
	}
	query += ` ORDER BY ` + orderExpr + ` ` + direction + `, e.id ` + direction

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	defer rows.Close()

	list := make([]models.EnquiryRow, 0, 64)
	for rows.Next() {
		var (
			r         models.EnquiryRow
			createdAt int64
			category  string
		)
		if err := rows.Scan(&r.ID, &r.CakeID, &r.Name, &r.Email, &r.Phone, &r.Message, &createdAt, &r.CakeName, &category); err != nil {
			return nil, fmt.Errorf("scan enquiry: %w", err)
		}
		r.CreatedAt = fromMillis(createdAt)
		r.CakeCategory = models.Category(category)
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return list, nil
}
