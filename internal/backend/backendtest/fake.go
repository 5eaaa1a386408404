// Package backendtest provides an in-memory backend for handler tests.
package backendtest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/models"
)

// Fake implements backend.Rows, backend.Auth and backend.Storage and records
// every call so tests can assert on them.
type Fake struct {
	mu sync.Mutex

	Cakes     []models.Cake
	Enquiries []models.Enquiry
	Objects   map[string][]byte

	// Admin credentials accepted by SignIn, email -> password.
	Admins   map[string]string
	Sessions map[string]models.Session

	CakeQueries       []backend.CakeQuery
	EnquiryQueries    []backend.EnquiryQuery
	InsertedCakes     []models.Cake
	InsertedEnquiries []models.Enquiry
	Uploads           []string

	ListCakesErr     error
	ListEnquiriesErr error
	InsertCakeErr    error
	InsertEnquiryErr error
	// UploadErr, when set, is consulted for every upload by object name.
	UploadErr func(name string) error

	seq int
}

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		Objects:  map[string][]byte{},
		Admins:   map[string]string{},
		Sessions: map[string]models.Session{},
	}
}

// Client wraps the fake in a backend.Client.
func (f *Fake) Client() *backend.Client {
	return &backend.Client{Rows: f, Auth: f, Storage: f}
}

func (f *Fake) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *Fake) ListCakes(_ context.Context, q backend.CakeQuery) ([]models.Cake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CakeQueries = append(f.CakeQueries, q)
	if f.ListCakesErr != nil {
		return nil, f.ListCakesErr
	}
	var out []models.Cake
	for _, c := range f.Cakes {
		if q.FeaturedOnly && !c.Featured {
			continue
		}
		if q.Category != "" && c.Category != q.Category {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *Fake) InsertCake(_ context.Context, cake models.Cake) (models.Cake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.InsertedCakes = append(f.InsertedCakes, cake)
	if f.InsertCakeErr != nil {
		return models.Cake{}, f.InsertCakeErr
	}
	if cake.ID == "" {
		cake.ID = f.nextID("cake")
	}
	if cake.CreatedAt.IsZero() {
		cake.CreatedAt = time.Now().UTC()
	}
	f.Cakes = append(f.Cakes, cake)
	return cake, nil
}

func (f *Fake) InsertEnquiry(_ context.Context, enquiry models.Enquiry) (models.Enquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.InsertedEnquiries = append(f.InsertedEnquiries, enquiry)
	if f.InsertEnquiryErr != nil {
		return models.Enquiry{}, f.InsertEnquiryErr
	}
	if enquiry.ID == "" {
		enquiry.ID = f.nextID("enquiry")
	}
	if enquiry.CreatedAt.IsZero() {
		enquiry.CreatedAt = time.Now().UTC()
	}
	f.Enquiries = append(f.Enquiries, enquiry)
	return enquiry, nil
}

func (f *Fake) ListEnquiries(_ context.Context, q backend.EnquiryQuery) ([]models.EnquiryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.EnquiryQueries = append(f.EnquiryQueries, q)
	if f.ListEnquiriesErr != nil {
		return nil, f.ListEnquiriesErr
	}
	cakes := map[string]models.Cake{}
	for _, c := range f.Cakes {
		cakes[c.ID] = c
	}
	out := make([]models.EnquiryRow, 0, len(f.Enquiries))
	for _, e := range f.Enquiries {
		row := models.EnquiryRow{Enquiry: e}
		if c, ok := cakes[e.CakeID]; ok && q.IncludeCake {
			row.CakeName = c.Name
			row.CakeCategory = c.Category
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		less := lessBy(q.OrderBy, out[i], out[j])
		if q.Ascending {
			return less
		}
		return lessBy(q.OrderBy, out[j], out[i])
	})
	return out, nil
}

func lessBy(column string, a, b models.EnquiryRow) bool {
	switch column {
	case "name":
		return a.Name < b.Name
	case "email":
		return a.Email < b.Email
	case "phone":
		return a.Phone < b.Phone
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (f *Fake) SignIn(_ context.Context, email, password string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	want, ok := f.Admins[strings.ToLower(strings.TrimSpace(email))]
	if !ok || want != password {
		return models.Session{}, backend.ErrInvalidCredentials
	}
	s := models.Session{
		Token:     f.nextID("token"),
		AdminID:   "admin-1",
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	f.Sessions[s.Token] = s
	return s, nil
}

func (f *Fake) GetSession(_ context.Context, token string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.Sessions[token]
	if !ok {
		return models.Session{}, backend.ErrNoSession
	}
	return s, nil
}

func (f *Fake) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.Sessions, token)
	return nil
}

func (f *Fake) Upload(_ context.Context, name string, r io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UploadErr != nil {
		if err := f.UploadErr(name); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.Objects[name] = data
	f.Uploads = append(f.Uploads, name)
	return nil
}

func (f *Fake) PublicURL(name string) string {
	return "https://cdn.test/cake-images/" + name
}
