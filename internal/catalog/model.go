package catalog

import (
	"strings"

	"github.com/masumislambadsha/zavisoft/internal/domain"
	"github.com/masumislambadsha/zavisoft/pkg/slug"
)

type apiCategory struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

func (c apiCategory) toDomain() domain.Category {
	s := c.Slug
	if s == "" {
		s = slug.Generate(c.Name)
	}
	return domain.Category{ID: c.ID, Name: c.Name, Slug: s, Image: cleanImageURL(c.Image)}
}

type apiProduct struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Price       float64     `json:"price"`
	Description string      `json:"description"`
	Images      []string    `json:"images"`
	Category    apiCategory `json:"category"`
}

func (p apiProduct) toDomain() domain.Product {
	s := p.Slug
	if s == "" {
		s = slug.WithID(p.Title, p.ID)
	}

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img = cleanImageURL(img); img != "" {
			images = append(images, img)
		}
	}

	return domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        s,
		Price:       domain.ToCents(p.Price),
		Description: p.Description,
		Images:      images,
		Category:    p.Category.toDomain(),
	}
}

func toProducts(raw []apiProduct) []domain.Product {
	out := make([]domain.Product, 0, len(raw))
	for _, p := range raw {
		out = append(out, p.toDomain())
	}
	return out
}

// cleanImageURL strips the JSON-array debris some catalog entries carry
// around their image URLs, e.g. `["https://i.imgur.com/x.jpeg"`.
func cleanImageURL(s string) string {
	return strings.Trim(strings.TrimSpace(s), `[]"`)
}
