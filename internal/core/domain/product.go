package domain

// Well-known product identifiers. Promotions are keyed on these.
const (
	ProductBread  = "bread"
	ProductMilk   = "milk"
	ProductCheese = "cheese"
	ProductSoup   = "soup"
	ProductButter = "butter"
)

type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// DefaultProducts is the built-in catalog used when no catalog database is configured.
func DefaultProducts() []Product {
	return []Product{
		{ID: ProductBread, Name: "Bread", Price: 1.10},
		{ID: ProductMilk, Name: "Milk", Price: 0.50},
		{ID: ProductCheese, Name: "Cheese", Price: 0.90},
		{ID: ProductSoup, Name: "Soup", Price: 0.60},
		{ID: ProductButter, Name: "Butter", Price: 1.20},
	}
}
