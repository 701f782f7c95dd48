package domain

// SourceCategory is what an exact-name source declares about its record
type SourceCategory string

const (
	SourceRestaurantChain SourceCategory = "restaurant_chain"
	SourceBranded         SourceCategory = "branded"
	SourceCommonFood      SourceCategory = "common_food"
	SourceUnknown         SourceCategory = "unknown"
)

// ExactFood is the single best match from a natural-language nutrition source
type ExactFood struct {
	Name         string
	Brand        string
	Category     SourceCategory
	ServingGrams float64
	Nutrients    NutrientRecord
}

// PackagedProduct is a barcode/product database record, nutrients per 100g
type PackagedProduct struct {
	Code         string
	Name         string
	Brand        string
	ServingGrams float64 // 0 when the product declares none
	Per100g      NutrientRecord
}

// FoodIdentifier is one entry of a proprietary food-ID list
type FoodIdentifier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
