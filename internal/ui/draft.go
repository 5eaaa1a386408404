package ui

import (
	"strings"

	"SweetDelights/internal/models"
)

// CakeDraft is the add-cake form while the admin is still filling it in.
// It survives the upload round trips between requests.
type CakeDraft struct {
	Name        string
	Description string
	Category    models.Category
	Featured    bool
	Images      []string
}

// NewCakeDraft returns an empty form with the first category selected.
func NewCakeDraft() CakeDraft {
	return CakeDraft{Category: models.Cheesecakes}
}

// AddImages appends uploaded public URLs.
func (d *CakeDraft) AddImages(urls ...string) {
	d.Images = append(d.Images, urls...)
}

// RemoveImage drops the image at i; out-of-range indexes are ignored.
func (d *CakeDraft) RemoveImage(i int) {
	if i < 0 || i >= len(d.Images) {
		return
	}
	d.Images = append(d.Images[:i:i], d.Images[i+1:]...)
}

// Cake converts the draft into a cake row, skipping blank image entries.
func (d CakeDraft) Cake() models.Cake {
	images := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		if strings.TrimSpace(img) != "" {
			images = append(images, img)
		}
	}
	return models.Cake{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Category:    d.Category,
		Images:      images,
		Featured:    d.Featured,
	}
}
