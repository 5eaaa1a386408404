package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the URL slug of a cake category.
type Category string

const (
	Cheesecakes Category = "cheesecakes"
	Chocolate   Category = "chocolate"
	RedVelvet   Category = "red-velvet"
	Fruit       Category = "fruit"
	Custom      Category = "custom"
)

// Categories is the fixed list offered in the navigation and the admin select,
// in display order.
var Categories = []Category{Cheesecakes, Chocolate, RedVelvet, Fruit, Custom}

// labels is filled once; a cases.Caser is stateful and must not be shared
// between goroutines.
var labels = func() map[Category]string {
	m := make(map[Category]string, len(Categories))
	for _, c := range Categories {
		m[c] = titleLabel(c)
	}
	return m
}()

func titleLabel(c Category) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(c), "-", " "))
}

// Label turns a slug into its display form ("red-velvet" -> "Red Velvet").
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return titleLabel(c)
}

// Known reports whether c is one of Categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Cake is one catalog item.
type Cake struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Category    Category  `json:"category" yaml:"category"`
	Images      []string  `json:"images" yaml:"images"`
	Featured    bool      `json:"featured" yaml:"featured"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// Cover returns the first image, or "" when the cake has none.
func (c Cake) Cover() string {
	if len(c.Images) == 0 {
		return ""
	}
	return c.Images[0]
}
