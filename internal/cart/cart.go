package cart

import (
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/matthieukhl/buildright/internal/events"
	"github.com/matthieukhl/buildright/internal/models"
)

// DefaultTaxRate is applied to the subtotal when no rate is configured
var DefaultTaxRate = decimal.NewFromFloat(0.08)

// Cart holds the ordered cart lines. Every operation is total: unknown IDs
// are ignored and quantities are clamped at 1.
type Cart struct {
	mu         sync.Mutex
	items      []models.CartItem
	taxRate    decimal.Decimal
	dispatcher events.Dispatcher
}

// Summary is a consistent snapshot of the cart and its derived totals
type Summary struct {
	Items    []models.CartItem `json:"items"`
	Count    int               `json:"count"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Tax      decimal.Decimal   `json:"tax"`
	Total    decimal.Decimal   `json:"total"`
}

func New(taxRate decimal.Decimal, dispatcher events.Dispatcher) *Cart {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	return &Cart{
		taxRate:    taxRate,
		dispatcher: dispatcher,
	}
}

// Add increments the line for product.ID or appends a new line with quantity 1
func (c *Cart) Add(product models.Product) {
	c.mu.Lock()
	if i := c.indexOf(product.ID); i >= 0 {
		c.items[i].Quantity++
	} else {
		c.items = append(c.items, models.CartItem{Product: product, Quantity: 1})
	}
	count := c.countLocked()
	c.mu.Unlock()

	c.notify("add", product.ID, count)
}

func (c *Cart) Remove(id int64) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	count := c.countLocked()
	c.mu.Unlock()

	c.notify("remove", id, count)
}

// UpdateQuantity sets the line quantity to max(1, quantity+delta). The sum
// saturates at math.MaxInt.
func (c *Cart) UpdateQuantity(id int64, delta int) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.items[i].Quantity = max(1, addQuantity(c.items[i].Quantity, delta))
	count := c.countLocked()
	c.mu.Unlock()

	c.notify("update", id, count)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	c.notify("clear", 0, 0)
}

// Items returns a copy of the cart lines in insertion order
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Count is the badge number: the sum of all quantities
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countLocked()
}

func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

func (c *Cart) Tax() decimal.Decimal {
	return c.Subtotal().Mul(c.taxRate)
}

func (c *Cart) Total() decimal.Decimal {
	subtotal := c.Subtotal()
	return subtotal.Add(subtotal.Mul(c.taxRate))
}

func (c *Cart) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	subtotal := c.subtotalLocked()
	tax := subtotal.Mul(c.taxRate)
	return Summary{
		Items:    c.snapshotLocked(),
		Count:    c.countLocked(),
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// addQuantity adds delta to a positive quantity without wrapping
func addQuantity(quantity, delta int) int {
	if delta > 0 && quantity > math.MaxInt-delta {
		return math.MaxInt
	}
	return quantity + delta
}

func (c *Cart) indexOf(id int64) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) countLocked() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) subtotalLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

func (c *Cart) snapshotLocked() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) notify(op string, id int64, count int) {
	_ = c.dispatcher.Dispatch(events.CartChanged{Op: op, ProductID: id, Count: count})
}
