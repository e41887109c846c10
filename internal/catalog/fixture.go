package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/matthieukhl/buildright/internal/models"
)

//go:embed fixtures/products.yaml
var defaultFixture []byte

type fixtureFile struct {
	Products []fixtureProduct `yaml:"products"`
}

type fixtureProduct struct {
	ID          int64    `yaml:"id"`
	Name        string   `yaml:"name"`
	Price       string   `yaml:"price"`
	Category    string   `yaml:"category"`
	Image       string   `yaml:"image"`
	Description string   `yaml:"description"`
	Rating      float64  `yaml:"rating"`
	Specs       []string `yaml:"specs"`
}

// LoadFixture reads the seed catalog from path, or the embedded fixture when
// path is empty
func LoadFixture(path string) ([]models.Product, error) {
	data := defaultFixture
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
		}
		data = b
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML product fixture
func ParseFixture(data []byte) ([]models.Product, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	seen := make(map[int64]struct{}, len(f.Products))
	products := make([]models.Product, 0, len(f.Products))
	for _, fp := range f.Products {
		if _, dup := seen[fp.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d in fixture", fp.ID)
		}
		seen[fp.ID] = struct{}{}

		price, err := decimal.NewFromString(fp.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d: invalid price %q: %w", fp.ID, fp.Price, err)
		}
		category, err := models.ParseCategory(fp.Category)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", fp.ID, err)
		}
		if fp.Rating < models.MinRating || fp.Rating > models.MaxRating {
			return nil, fmt.Errorf("product %d: rating %.1f outside %.1f-%.1f", fp.ID, fp.Rating, models.MinRating, models.MaxRating)
		}

		products = append(products, models.Product{
			ID:          fp.ID,
			Name:        fp.Name,
			Price:       price,
			Category:    category,
			Image:       fp.Image,
			Description: fp.Description,
			Rating:      fp.Rating,
			Specs:       fp.Specs,
		})
	}
	return products, nil
}
