package order

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
)

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var statuses = []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range statuses {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

const dateLayout = "Jan 2, 2006"

type Item struct {
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Image     string           `json:"image"`
	Category  catalog.Category `json:"category"`
	Size      catalog.Size     `json:"selectedSize"`
	Quantity  int              `json:"quantity"`
	UnitPrice int64            `json:"unitPrice"`
}

func (i Item) Total() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

type Order struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	ShippingAddress string    `json:"shippingAddress"`
	PlacedAt        time.Time `json:"date"`
	Total           int64     `json:"total"`
	Items           []Item    `json:"items"`
	Status          Status    `json:"status"`
}

// DisplayDate renders the placement date the way receipts show it, e.g. "Oct 24, 2024".
func (o Order) DisplayDate() string {
	return o.PlacedAt.Format(dateLayout)
}

func (o Order) Clone() Order {
	out := o
	out.Items = slices.Clone(o.Items)
	return out
}

type Stats struct {
	TotalRevenue  int64 `json:"totalRevenue"`
	PendingOrders int   `json:"pendingOrders"`
	OrderCount    int   `json:"orderCount"`
}

func cloneAll(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i := range orders {
		out[i] = orders[i].Clone()
	}
	return out
}
