package usecase

import (
	"reflect"
	"testing"

	"github.com/mealmap/backend/internal/domain"
)

func TestExtract(t *testing.T) {
	e := NewKeywordExtractor()

	testCases := []struct {
		name         string
		term         string
		wantKeywords []string
		wantMethods  []string
		wantCategory domain.FoodCategory
	}{
		{
			name:         "orders ingredients before cooking methods",
			term:         "grilled chicken breast",
			wantKeywords: []string{"chicken", "breast", "grilled"},
			wantMethods:  []string{"grilled"},
			wantCategory: domain.CategoryPoultry,
		},
		{
			name:         "drops stop words",
			term:         "salmon with the lemon",
			wantKeywords: []string{"salmon", "lemon"},
			wantCategory: domain.CategorySeafood,
		},
		{
			name:         "deduplicates tokens",
			term:         "beef beef stew",
			wantKeywords: []string{"beef", "stew"},
			wantCategory: domain.CategoryMeat,
		},
		{
			name:         "recognizes dessert",
			term:         "tiramisu",
			wantKeywords: []string{"tiramisu"},
			wantCategory: domain.CategorySweets,
		},
		{
			name:         "unknown category",
			term:         "mystery bowl",
			wantKeywords: []string{"mystery", "bowl"},
			wantCategory: domain.CategoryUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Extract(tc.term)
			if got.Term != tc.term {
				t.Errorf("Term = %q, want %q", got.Term, tc.term)
			}
			if !reflect.DeepEqual(got.Keywords, tc.wantKeywords) {
				t.Errorf("Keywords = %q, want %q", got.Keywords, tc.wantKeywords)
			}
			if len(got.Methods) != len(tc.wantMethods) || (len(tc.wantMethods) > 0 && !reflect.DeepEqual(got.Methods, tc.wantMethods)) {
				t.Errorf("Methods = %q, want %q", got.Methods, tc.wantMethods)
			}
			if got.Category != tc.wantCategory {
				t.Errorf("Category = %v, want %v", got.Category, tc.wantCategory)
			}
		})
	}
}

func TestClassifyCategory(t *testing.T) {
	testCases := []struct {
		text string
		want domain.FoodCategory
	}{
		{"turkey club", domain.CategoryPoultry},
		{"ham sandwich", domain.CategoryMeat},
		{"graham cracker", domain.CategoryUnknown},
		{"strawberry smoothie", domain.CategoryFruits},
		{"iced tea", domain.CategoryBeverages},
		{"steamed broccoli", domain.CategoryVegetables},
		{"lentil soup", domain.CategoryLegumes},
		{"Shrimp, cooked", domain.CategorySeafood},
		{"chocolate tart", domain.CategorySweets},
		{"", domain.CategoryUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			if got := ClassifyCategory(tc.text); got != tc.want {
				t.Errorf("ClassifyCategory(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestKeywordSetPrimary(t *testing.T) {
	e := NewKeywordExtractor()
	if got := e.Extract("fried shrimp").Primary(); got != "shrimp" {
		t.Errorf("Primary() = %q, want shrimp", got)
	}
	if got := (domain.KeywordSet{}).Primary(); got != "" {
		t.Errorf("Primary() of empty set = %q, want empty", got)
	}
}
