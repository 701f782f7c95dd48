package domain

// USDAFood represents a food item from the USDA FoodData Central API
type USDAFood struct {
	FdcID       int            `json:"fdcId"`
	Description string         `json:"description"`
	DataType    string         `json:"dataType"`
	Nutrients   []USDANutrient `json:"foodNutrients"`
}

// USDANutrient represents a single nutrient from USDA data. Search results use
// the flat NutrientID/Value fields; detail responses nest them under Nutrient/Amount.
type USDANutrient struct {
	NutrientID     int                 `json:"nutrientId,omitempty"`
	NutrientName   string              `json:"nutrientName,omitempty"`
	NutrientNumber string              `json:"nutrientNumber,omitempty"`
	UnitName       string              `json:"unitName,omitempty"`
	Value          float64             `json:"value,omitempty"`
	Nutrient       *USDANutrientDetail `json:"nutrient,omitempty"`
	Amount         float64             `json:"amount,omitempty"`
}

// USDANutrientDetail is the nested nutrient descriptor of a detail response
type USDANutrientDetail struct {
	ID       int    `json:"id"`
	Number   string `json:"number"`
	Name     string `json:"name"`
	UnitName string `json:"unitName"`
}

// ID returns the nutrient id regardless of response shape
func (n USDANutrient) ID() int {
	if n.NutrientID != 0 {
		return n.NutrientID
	}
	if n.Nutrient != nil {
		return n.Nutrient.ID
	}
	return 0
}

// Quantity returns the nutrient amount regardless of response shape
func (n USDANutrient) Quantity() float64 {
	if n.Value != 0 {
		return n.Value
	}
	return n.Amount
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}

// IsCurated reports whether a USDA data type is foundation-grade
func IsCurated(dataType string) bool {
	switch dataType {
	case "Foundation", "SR Legacy", "Survey (FNDDS)":
		return true
	}
	return false
}
