package seeds

import (
	"shopora/models"

	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var AllProducts = []models.Product{
	{Name: "Aurora Wireless Headphones", Category: "Electronics", Price: price("129.99"), Stock: 40, Description: "Over-ear wireless headphones with 40h battery and active noise cancelling.", Images: []string{"/uploads/seed/aurora-headphones.jpg"}},
	{Name: "Voltic USB-C Charger 65W", Category: "Electronics", Price: price("34.50"), Stock: 120, Description: "GaN fast charger with two USB-C ports.", Images: []string{"/uploads/seed/voltic-charger.jpg"}},
	{Name: "Nimbus Mechanical Keyboard", Category: "Electronics", Price: price("89.00"), Stock: 25, Description: "Hot-swappable 75% keyboard with PBT keycaps.", Images: []string{"/uploads/seed/nimbus-keyboard.jpg"}},
	{Name: "Trailblazer Hiking Backpack 35L", Category: "Outdoors", Price: price("74.95"), Stock: 30, Description: "Water-resistant pack with ventilated back panel and rain cover.", Images: []string{"/uploads/seed/trailblazer-pack.jpg"}},
	{Name: "Ember Insulated Bottle 750ml", Category: "Outdoors", Price: price("24.99"), Stock: 200, Description: "Keeps drinks cold for 24h, hot for 12h.", Images: []string{"/uploads/seed/ember-bottle.jpg"}},
	{Name: "Summit Camping Lantern", Category: "Outdoors", Price: price("19.99"), Stock: 85, Description: "Collapsible LED lantern, 3 brightness modes, USB rechargeable.", Images: []string{"/uploads/seed/summit-lantern.jpg"}},
	{Name: "Plush Knit Throw Blanket", Category: "Home", Price: price("45.00"), Stock: 60, Description: "Chunky knit throw, 130x170cm, machine washable.", Images: []string{"/uploads/seed/plush-throw.jpg"}},
	{Name: "Ceramic Pour-Over Set", Category: "Home", Price: price("38.75"), Stock: 45, Description: "Dripper, carafe and two cups in matte stoneware.", Images: []string{"/uploads/seed/pourover-set.jpg"}},
	{Name: "Lumen Desk Lamp", Category: "Home", Price: price("52.40"), Stock: 35, Description: "Dimmable LED lamp with wireless charging base.", Images: []string{"/uploads/seed/lumen-lamp.jpg"}},
	{Name: "Drift Merino Beanie", Category: "Apparel", Price: price("28.00"), Stock: 150, Description: "Soft merino wool beanie, one size.", Images: []string{"/uploads/seed/drift-beanie.jpg"}},
	{Name: "Stride Running Socks (3-pack)", Category: "Apparel", Price: price("16.50"), Stock: 300, Description: "Cushioned crew socks with arch support.", Images: []string{"/uploads/seed/stride-socks.jpg"}},
	{Name: "Canvas Weekender Bag", Category: "Apparel", Price: price("98.00"), Stock: 18, Description: "Waxed canvas duffel with leather trim and shoe compartment.", Images: []string{"/uploads/seed/weekender-bag.jpg"}},
}

// DefaultSettings are created once by the seeder; checkout falls back to
// the same values when a key is missing.
var DefaultSettings = []models.Setting{
	{Key: "store_name", Value: "Shopora"},
	{Key: "currency", Value: "USD"},
	{Key: "tax_rate", Value: "0.18"},
	{Key: "shipping_fee", Value: "2"},
	{Key: "free_shipping_threshold", Value: "50"},
}
