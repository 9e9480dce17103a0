// pkg/catalogfile/schema.go
package catalogfile

// Catalog is the on-disk seed format for the products table.
type Catalog struct {
	Version  string  `json:"version" validate:"required"`
	Products []Entry `json:"products" validate:"required,min=1,dive"`
}

type Entry struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0,lt=100000000"`
}
