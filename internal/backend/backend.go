// Package backend defines the data API the web layer talks to: a row store,
// session auth and object storage. Handlers depend on these interfaces only.
package backend

import (
	"context"
	"errors"
	"io"

	"SweetDelights/internal/models"
)

var (
	ErrNotFound           = errors.New("backend: not found")
	ErrInvalidCredentials = errors.New("backend: invalid credentials")
	ErrNoSession          = errors.New("backend: no active session")
)

// CakeQuery filters the cakes collection. Zero values mean "no filter";
// results are always ordered by creation time, newest first.
type CakeQuery struct {
	FeaturedOnly bool
	Category     models.Category
	Limit        int
}

// EnquiryQuery selects enquiries. IncludeCake joins the cake name and
// category onto each row.
type EnquiryQuery struct {
	OrderBy     string
	Ascending   bool
	IncludeCake bool
}

// Rows is the row-store part of the backend.
type Rows interface {
	ListCakes(ctx context.Context, q CakeQuery) ([]models.Cake, error)
	InsertCake(ctx context.Context, cake models.Cake) (models.Cake, error)
	InsertEnquiry(ctx context.Context, enquiry models.Enquiry) (models.Enquiry, error)
	ListEnquiries(ctx context.Context, q EnquiryQuery) ([]models.EnquiryRow, error)
}

// Auth exchanges credentials for opaque session tokens.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	GetSession(ctx context.Context, token string) (models.Session, error)
	SignOut(ctx context.Context, token string) error
}

// Storage is a single public bucket.
type Storage interface {
	Upload(ctx context.Context, name string, r io.Reader) error
	PublicURL(name string) string
}

// Client is the one backend handle built at startup and passed to every
// component that needs data.
type Client struct {
	Rows    Rows
	Auth    Auth
	Storage Storage
}

// New bundles the three backend parts. All of them are required.
func New(rows Rows, auth Auth, storage Storage) (*Client, error) {
	switch {
	case rows == nil:
		return nil, errors.New("backend: row store is required")
	case auth == nil:
		return nil, errors.New("backend: auth is required")
	case storage == nil:
		return nil, errors.New("backend: storage is required")
	}
	return &Client{Rows: rows, Auth: auth, Storage: storage}, nil
}
