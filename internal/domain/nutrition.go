package domain

import (
	"sort"
	"time"
)

// Nutrient identifies one entry of the fixed nutrient vocabulary
type Nutrient string

const (
	NutrientCalories      Nutrient = "calories"
	NutrientCarbohydrates Nutrient = "carbohydrates"
	NutrientProtein       Nutrient = "protein"
	NutrientFat           Nutrient = "fat"
	NutrientFiber         Nutrient = "fiber"
	NutrientSugar         Nutrient = "sugar"
	NutrientSodium        Nutrient = "sodium"
)

// CoreNutrients are always reported, even when a source omits them
var CoreNutrients = []Nutrient{NutrientCalories, NutrientCarbohydrates, NutrientProtein, NutrientFat}

// AllNutrients lists the vocabulary in display order
var AllNutrients = []Nutrient{
	NutrientCalories, NutrientCarbohydrates, NutrientProtein, NutrientFat,
	NutrientFiber, NutrientSugar, NutrientSodium,
}

// Unit returns the fixed unit for a nutrient
func (n Nutrient) Unit() string {
	switch n {
	case NutrientCalories:
		return "kcal"
	case NutrientSodium:
		return "mg"
	default:
		return "g"
	}
}

// NutrientRecord holds raw nutrient amounts for one candidate. Missing keys are
// nutrients the source did not report.
type NutrientRecord map[Nutrient]float64

// Value returns the amount for n, treating a missing nutrient as 0
func (r NutrientRecord) Value(n Nutrient) float64 {
	if r == nil {
		return 0
	}
	v := r[n]
	if v < 0 {
		return 0
	}
	return v
}

// Completeness is the fraction of the nutrient vocabulary present in the record
func (r NutrientRecord) Completeness() float64 {
	present := 0
	for _, n := range AllNutrients {
		if _, ok := r[n]; ok {
			present++
		}
	}
	return float64(present) / float64(len(AllNutrients))
}

// Scale returns a copy with every amount multiplied by factor
func (r NutrientRecord) Scale(factor float64) NutrientRecord {
	out := make(NutrientRecord, len(r))
	for n, v := range r {
		out[n] = v * factor
	}
	return out
}

// Range is a min/max estimate for one nutrient
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

// NutritionRange maps each reported nutrient to its range
type NutritionRange map[Nutrient]Range

// Nutrients returns the reported nutrients in display order
func (nr NutritionRange) Nutrients() []Nutrient {
	out := make([]Nutrient, 0, len(nr))
	for n := range nr {
		out = append(out, n)
	}
	order := make(map[Nutrient]int, len(AllNutrients))
	for i, n := range AllNutrients {
		order[n] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}

// FoodCategory is the coarse category inferred from a term
type FoodCategory string

const (
	CategoryPoultry    FoodCategory = "poultry"
	CategoryMeat       FoodCategory = "meat"
	CategorySeafood    FoodCategory = "seafood"
	CategoryDairy      FoodCategory = "dairy"
	CategoryVegetables FoodCategory = "vegetables"
	CategoryFruits     FoodCategory = "fruits"
	CategoryGrains     FoodCategory = "grains"
	CategoryLegumes    FoodCategory = "legumes"
	CategoryNuts       FoodCategory = "nuts"
	CategorySweets     FoodCategory = "sweets"
	CategoryBeverages  FoodCategory = "beverages"
	CategoryUnknown    FoodCategory = "unknown"
)

// IsProtein reports whether the category is an animal protein
func (c FoodCategory) IsProtein() bool {
	return c == CategoryPoultry || c == CategoryMeat || c == CategorySeafood
}

// KeywordSet is the ranked token list extracted from one normalized term
type KeywordSet struct {
	Term     string       `json:"term"`
	Keywords []string     `json:"keywords"` // ingredients first, cooking methods last
	Methods  []string     `json:"methods,omitempty"`
	Category FoodCategory `json:"category"`
}

// Primary returns the most discriminative keyword, or "" when empty
func (k KeywordSet) Primary() string {
	if len(k.Keywords) == 0 {
		return ""
	}
	return k.Keywords[0]
}

// CandidateMatch is one source's proposed match for a term
type CandidateMatch struct {
	Name          string         `json:"name"`
	SourceID      string         `json:"sourceId"`
	Nutrients     NutrientRecord `json:"nutrients"`
	Score         float64        `json:"score"` // 0-1 relevance
	Specificity   float64        `json:"specificity,omitempty"`
	ServingGrams  float64        `json:"servingGrams,omitempty"`
	IsGeneralized bool           `json:"isGeneralized,omitempty"`
}

// Tier names, in default priority order
const (
	TierLocal      = "local"
	TierUSDA       = "usda"
	TierExact      = "exact"
	TierPackaged   = "packaged"
	TierIdentifier = "identifier"
	TierNone       = "none"
)

// ResolutionResult is the terminal output of the engine for one raw query
type ResolutionResult struct {
	Query         string         `json:"query"`
	CleanedTerm   string         `json:"cleanedTerm"`
	MatchedName   string         `json:"matchedName,omitempty"`
	Nutrition     NutritionRange `json:"nutrition,omitempty"`
	Confidence    float64        `json:"confidence"` // 0-0.9
	Tier          string         `json:"tier"`
	MatchCount    int            `json:"matchCount"`
	IsAvailable   bool           `json:"isAvailable"`
	IsGeneralized bool           `json:"isGeneralized"`
	Timestamp     time.Time      `json:"timestamp"`
}

// Unavailable builds the explicit empty result for a query
func Unavailable(query, cleaned string, at time.Time) *ResolutionResult {
	return &ResolutionResult{
		Query:       query,
		CleanedTerm: cleaned,
		Tier:        TierNone,
		IsAvailable: false,
		Timestamp:   at,
	}
}
