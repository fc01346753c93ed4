package order

import (
	"time"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
)

// DemoOrders is the order history a fresh store starts with.
func DemoOrders() []Order {
	return []Order{
		{
			ID:              "ORD-7721",
			CustomerName:    "Priya Sharma",
			CustomerEmail:   "priya@example.com",
			ShippingAddress: "123, Heritage Residency, Jaipur",
			PlacedAt:        time.Date(2024, time.October, 24, 0, 0, 0, 0, time.UTC),
			Total:           12500,
			Status:          StatusDelivered,
			Items: []Item{{
				ProductID: "1",
				Name:      "Royal Banarasi Silk Saree",
				Image:     "https://images.unsplash.com/photo-1610030469983-98e550d6193c?auto=format&fit=crop&q=80&w=800",
				Category:  catalog.CategorySarees,
				Size:      catalog.SizeM,
				Quantity:  1,
				UnitPrice: 12500,
			}},
		},
		{
			ID:              "ORD-9932",
			CustomerName:    "Rahul Verma",
			CustomerEmail:   "rahul@example.com",
			ShippingAddress: "45, MG Road, Bangalore",
			PlacedAt:        time.Date(2024, time.November, 2, 0, 0, 0, 0, time.UTC),
			Total:           3500,
			Status:          StatusProcessing,
			Items: []Item{{
				ProductID: "4",
				Name:      "Festive Chikankari Kurti",
				Image:     "https://thechikanlabel.com/cdn/shop/files/Sitara_Chikankari_Viscose_Kurta_Set_with_Dupatta_-_Rani_Pink.jpg?v=1750413724&width=1024",
				Category:  catalog.CategoryKurtis,
				Size:      catalog.SizeL,
				Quantity:  1,
				UnitPrice: 3500,
			}},
		},
	}
}
