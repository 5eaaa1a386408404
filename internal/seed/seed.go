// Package seed imports a YAML cake catalog through the backend row store.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/models"
)

// Catalog is the seed file layout:
//
//	cakes:
//	  - name: Lemon Cheesecake
//	    description: Zesty and light
//	    category: cheesecakes
//	    featured: true
//	    images: [https://...]
type Catalog struct {
	Cakes []models.Cake `yaml:"cakes"`
}

// Load parses and validates a catalog.
func Load(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	for i, cake := range c.Cakes {
		if strings.TrimSpace(cake.Name) == "" {
			return Catalog{}, fmt.Errorf("cake #%d: name is required", i+1)
		}
		if !cake.Category.Known() {
			return Catalog{}, fmt.Errorf("cake %q: unknown category %q", cake.Name, cake.Category)
		}
	}
	return c, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, err
	}
	defer f.Close()
	return Load(f)
}

// Apply inserts every cake in order and returns how many were stored. It
// stops at the first failure.
func Apply(ctx context.Context, rows backend.Rows, c Catalog) (int, error) {
	n := 0
	for _, cake := range c.Cakes {
		if _, err := rows.InsertCake(ctx, cake); err != nil {
			return n, fmt.Errorf("insert %q: %w", cake.Name, err)
		}
		n++
	}
	return n, nil
}
