package catalog

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"github.com/matthieukhl/buildright/internal/events"
	"github.com/matthieukhl/buildright/internal/models"
)

const DefaultImage = "https://placehold.co/400x400?text=New+Product"

// DefaultSpecs are attached to admin-created products that carry no specs
var DefaultSpecs = []string{"Standard Grade", "New Arrival"}

// IDGenerator hands out product identifiers
type IDGenerator interface {
	Next() int64
}

// SnowflakeIDs derives identifiers from the creation time, so IDs grow
// monotonically and stay distinct for back-to-back calls.
type SnowflakeIDs struct {
	node *snowflake.Node
}

func NewSnowflakeIDs(nodeID int64) (*SnowflakeIDs, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &SnowflakeIDs{node: node}, nil
}

func (s *SnowflakeIDs) Next() int64 {
	return s.node.Generate().Int64()
}

// Draft is an admin submission before an identifier is assigned
type Draft struct {
	Name        string
	Price       decimal.Decimal
	Category    models.Category
	Image       string
	Description string
	Specs       []string
}

// Store is the in-memory ordered catalog
type Store struct {
	mu         sync.RWMutex
	products   []models.Product
	ids        IDGenerator
	dispatcher events.Dispatcher
}

func New(seed []models.Product, ids IDGenerator, dispatcher events.Dispatcher) *Store {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	products := make([]models.Product, len(seed))
	copy(products, seed)
	return &Store{
		products:   products,
		ids:        ids,
		dispatcher: dispatcher,
	}
}

// AddProduct appends a new product built from draft and returns it
func (s *Store) AddProduct(d Draft) models.Product {
	image := d.Image
	if image == "" {
		image = DefaultImage
	}
	specs := d.Specs
	if len(specs) == 0 {
		specs = append([]string(nil), DefaultSpecs...)
	}

	s.mu.Lock()
	id := s.ids.Next()
	for s.indexOf(id) >= 0 {
		id = s.ids.Next()
	}
	p := models.Product{
		ID:          id,
		Name:        d.Name,
		Price:       d.Price,
		Category:    d.Category,
		Image:       image,
		Description: d.Description,
		Rating:      0,
		Specs:       specs,
	}
	s.products = append(s.products, p)
	s.mu.Unlock()

	_ = s.dispatcher.Dispatch(events.ProductAdded{ProductID: p.ID, Name: p.Name})
	return p
}

// All returns the catalog in insertion order
func (s *Store) All() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Inventory returns the catalog newest first, as the admin dashboard shows it
func (s *Store) Inventory() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for i := len(s.products) - 1; i >= 0; i-- {
		out = append(out, s.products[i])
	}
	return out
}

func (s *Store) Find(id int64) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.products[i], true
	}
	return models.Product{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) indexOf(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
