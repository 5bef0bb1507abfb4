package domain

const (
	CategoryClothes = "clothes"
	CategoryLipTint = "lip-tint"
	CategoryGeneral = "general"
)

// DefaultVariant is assigned to products that declare no variants.
const DefaultVariant = "One Size"

type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Category string   `json:"category"`
	Stock    int      `json:"stock"`
	Variants []string `json:"variants"`
	Image    string   `json:"image,omitempty"`
}
