package usda

import (
	"github.com/mealmap/backend/internal/domain"
)

// USDA Nutrient IDs for the nutrient vocabulary
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDTotalFat     = 1004 // Total Fat (g)
	NutrientIDFiber        = 1079 // Fiber, total dietary (g)
	NutrientIDSugars       = 2000 // Sugars, total (g)
	NutrientIDSodium       = 1093 // Sodium (mg)

	// Foundation records often report energy only under the Atwater ids
	NutrientIDEnergyAtwaterSpecific = 2048 // Energy, Atwater Specific Factors (kcal)
	NutrientIDEnergyAtwaterGeneral  = 2047 // Energy, Atwater General Factors (kcal)
)

// energyIDs are tried in order until one is present
var energyIDs = []int{NutrientIDEnergy, NutrientIDEnergyAtwaterSpecific, NutrientIDEnergyAtwaterGeneral}

var nutrientByID = map[int]domain.Nutrient{
	NutrientIDProtein:      domain.NutrientProtein,
	NutrientIDCarbohydrate: domain.NutrientCarbohydrates,
	NutrientIDTotalFat:     domain.NutrientFat,
	NutrientIDFiber:        domain.NutrientFiber,
	NutrientIDSugars:       domain.NutrientSugar,
	NutrientIDSodium:       domain.NutrientSodium,
}

// ExtractNutrients converts a USDA nutrient list into a NutrientRecord.
// Nutrients outside the vocabulary are ignored; missing ones stay absent.
func ExtractNutrients(usdaNutrients []domain.USDANutrient) domain.NutrientRecord {
	record := domain.NutrientRecord{}

	for _, nutrient := range usdaNutrients {
		n, ok := nutrientByID[nutrient.ID()]
		if !ok {
			continue
		}
		if _, seen := record[n]; seen {
			continue
		}
		record[n] = nutrient.Quantity()
	}

	for _, id := range energyIDs {
		if kcal, ok := FindNutrientValue(usdaNutrients, id); ok {
			record[domain.NutrientCalories] = kcal
			break
		}
	}

	return record
}

// FindNutrientValue finds a specific nutrient value by ID
func FindNutrientValue(nutrients []domain.USDANutrient, nutrientID int) (float64, bool) {
	for _, nutrient := range nutrients {
		if nutrient.ID() == nutrientID {
			return nutrient.Quantity(), true
		}
	}
	return 0, false
}
