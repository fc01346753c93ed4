// Package cart holds the line items of the single implicit shopping session.
package cart

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
)

// MaxLineQuantity bounds a single line so totals stay far from int64 overflow.
const MaxLineQuantity = 99

var (
	ErrSizeRequired   = apperr.New(apperr.KindValidation, "a valid size must be selected")
	ErrInvalidProduct = apperr.New(apperr.KindValidation, "product cannot be added to cart")
	ErrQuantityLimit  = apperr.New(apperr.KindValidation, fmt.Sprintf("quantity cannot exceed %d", MaxLineQuantity))
	ErrCartHeld       = apperr.New(apperr.KindConflict, "cart cannot change while an order is being placed")
)

// Line is keyed by (ProductID, Size). UnitPrice is the effective price at add time.
type Line struct {
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Image     string           `json:"image"`
	Category  catalog.Category `json:"category"`
	Size      catalog.Size     `json:"selectedSize"`
	Quantity  int              `json:"quantity"`
	UnitPrice int64            `json:"unitPrice"`
}

func (l Line) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

type Snapshot struct {
	Lines     []Line `json:"items"`
	Subtotal  int64  `json:"subtotal"`
	ItemCount int    `json:"itemCount"`
}

type Cart struct {
	mu      sync.RWMutex
	lines   []Line
	visible bool
	// held freezes the lines while checkout commits them.
	held bool
}

func New() *Cart {
	return &Cart{}
}

// Add inserts the (product, size) line or bumps its quantity by one.
// Only a missing or unknown size is rejected.
func (c *Cart) Add(product catalog.Product, size catalog.Size) error {
	size, err := catalog.ParseSize(string(size))
	if err != nil {
		return ErrSizeRequired
	}
	if product.ID == "" {
		return ErrInvalidProduct
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held {
		return ErrCartHeld
	}

	if i := c.indexOf(product.ID, size); i >= 0 {
		if c.lines[i].Quantity >= MaxLineQuantity {
			return ErrQuantityLimit
		}
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Category:  product.Category,
			Size:      size,
			Quantity:  1,
			UnitPrice: product.EffectivePrice(),
		})
	}
	c.visible = true

	log.Debug().Str("product_id", product.ID).Stringer("size", size).Msg("cart: line added")
	return nil
}

// Remove is a no-op when the line is absent.
func (c *Cart) Remove(productID string, size catalog.Size) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held {
		return ErrCartHeld
	}

	c.removeLocked(productID, size)
	return nil
}

// UpdateQuantity sets the quantity exactly; anything below one removes the line.
func (c *Cart) UpdateQuantity(productID string, size catalog.Size, quantity int) error {
	if quantity > MaxLineQuantity {
		return ErrQuantityLimit
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held {
		return ErrCartHeld
	}

	if quantity < 1 {
		c.removeLocked(productID, size)
		return nil
	}

	if i := c.indexOf(productID, size); i >= 0 {
		c.lines[i].Quantity = quantity
	}
	return nil
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held {
		return ErrCartHeld
	}

	c.lines = nil
	return nil
}

// Hold freezes the lines until Release or ClearHeld. Reads still work.
func (c *Cart) Hold() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held {
		return ErrCartHeld
	}

	c.held = true
	return nil
}

func (c *Cart) Release() {
	c.mu.Lock()
	c.held = false
	c.mu.Unlock()
}

// ClearHeld empties the cart and releases the hold in one step.
func (c *Cart) ClearHeld() {
	c.mu.Lock()
	c.lines = nil
	c.held = false
	c.mu.Unlock()
}

func (c *Cart) Held() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.held
}

func (c *Cart) Subtotal() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return subtotal(c.lines)
}

func (c *Cart) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return itemCount(c.lines)
}

func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.lines)
}

// Snapshot reads lines and totals under one lock.
func (c *Cart) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lines := slices.Clone(c.lines)
	if lines == nil {
		lines = []Line{}
	}

	return Snapshot{
		Lines:     lines,
		Subtotal:  subtotal(c.lines),
		ItemCount: itemCount(c.lines),
	}
}

func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.lines) == 0
}

func (c *Cart) References(productID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, l := range c.lines {
		if l.ProductID == productID {
			return true
		}
	}
	return false
}

// Visible is the drawer flag. It takes no part in totals.
func (c *Cart) Visible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.visible
}

func (c *Cart) SetVisible(v bool) {
	c.mu.Lock()
	c.visible = v
	c.mu.Unlock()
}

func (c *Cart) removeLocked(productID string, size catalog.Size) {
	if i := c.indexOf(productID, size); i >= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

func (c *Cart) indexOf(productID string, size catalog.Size) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].Size == size {
			return i
		}
	}
	return -1
}

func subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Total()
	}
	return sum
}

func itemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
