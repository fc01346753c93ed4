package catalog

import (
	"fmt"
	"slices"
	"strings"
)

type Category string

const (
	CategorySarees   Category = "sarees"
	CategoryLehengas Category = "lehengas"
	CategoryKurtis   Category = "kurtis"
	CategorySuits    Category = "suits"
	CategoryWedding  Category = "wedding"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) Valid() bool {
	for _, info := range categories {
		if info.ID == c {
			return true
		}
	}
	return false
}

type CategoryInfo struct {
	ID   Category `json:"id"`
	Name string   `json:"name"`
}

var categories = []CategoryInfo{
	{ID: CategorySarees, Name: "Sarees"},
	{ID: CategoryLehengas, Name: "Lehengas"},
	{ID: CategoryKurtis, Name: "Kurtis"},
	{ID: CategorySuits, Name: "Suits"},
	{ID: CategoryWedding, Name: "Wedding Collection"},
}

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

func Sizes() []Size {
	return slices.Clone(sizes)
}

func (s Size) String() string {
	return string(s)
}

// ParseSize accepts a size label in any letter case.
func ParseSize(raw string) (Size, error) {
	s := Size(strings.ToUpper(strings.TrimSpace(raw)))
	if slices.Contains(sizes, s) {
		return s, nil
	}
	return "", fmt.Errorf("unknown size %q", raw)
}

type Product struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	BasePrice   int64    `json:"price" yaml:"price"`
	SalePrice   *int64   `json:"salePrice,omitempty" yaml:"sale_price,omitempty"`
	Category    Category `json:"category" yaml:"category"`
	Image       string   `json:"image" yaml:"image"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
	Stock       *int     `json:"stock,omitempty" yaml:"stock,omitempty"`
}

// EffectivePrice is the sale price when one is set, otherwise the base price.
func (p Product) EffectivePrice() int64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.BasePrice
}

func (p Product) Clone() Product {
	out := p
	out.Features = slices.Clone(p.Features)
	if p.SalePrice != nil {
		v := *p.SalePrice
		out.SalePrice = &v
	}
	if p.Stock != nil {
		v := *p.Stock
		out.Stock = &v
	}
	return out
}

func cloneAll(products []Product) []Product {
	out := make([]Product, len(products))
	for i := range products {
		out[i] = products[i].Clone()
	}
	return out
}
