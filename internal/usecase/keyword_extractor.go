package usecase

import (
	"regexp"
	"strings"

	"github.com/mealmap/backend/internal/domain"
)

// Punctuation and numbers removed before tokenizing
var punctuationRegex = regexp.MustCompile(`[^\p{L}\s'-]+`)

// extendedStopWords never carry food meaning on their own
var extendedStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "with": true,
	"in": true, "on": true, "for": true, "to": true, "from": true, "by": true,
	"or": true, "at": true, "as": true, "w": true, "our": true, "your": true,
	"served": true, "topped": true, "style": true, "side": true, "house": true,
	"choice": true, "fresh": true, "homemade": true, "made": true, "daily": true,
	"special": true, "classic": true, "traditional": true, "famous": true,
	"signature": true, "small": true, "medium": true, "large": true, "regular": true,
}

// cookingMethods are kept but ordered after ingredients
var cookingMethods = map[string]bool{
	"grilled": true, "fried": true, "baked": true, "roasted": true,
	"steamed": true, "boiled": true, "raw": true, "cooked": true,
}

type categoryRule struct {
	category    domain.FoodCategory
	identifiers []string
}

// categoryRules are checked in order; the first matching category wins
var categoryRules = []categoryRule{
	{domain.CategoryPoultry, []string{"chicken", "turkey", "duck", "poultry", "wings", "quail", "hen"}},
	{domain.CategoryMeat, []string{"beef", "pork", "steak", "lamb", "bacon", "ham", "sausage", "veal", "burger", "brisket", "ribs", "meatball", "prosciutto", "salami", "pepperoni", "chorizo", "meat"}},
	{domain.CategorySeafood, []string{"fish", "salmon", "tuna", "shrimp", "prawn", "crab", "lobster", "cod", "tilapia", "scallop", "clam", "mussel", "oyster", "calamari", "squid", "anchov", "sushi", "seafood"}},
	{domain.CategoryDairy, []string{"cheese", "milk", "yogurt", "cream", "butter", "mozzarella", "parmesan", "cheddar", "ricotta", "burrata", "egg", "eggs"}},
	{domain.CategoryVegetables, []string{"salad", "lettuce", "spinach", "broccoli", "carrot", "tomato", "potato", "onion", "pepper", "kale", "mushroom", "zucchini", "eggplant", "vegetable", "veggie", "cucumber", "asparagus", "cauliflower", "fries"}},
	{domain.CategoryFruits, []string{"apple", "banana", "berry", "berries", "orange", "lemon", "mango", "peach", "pear", "grape", "cherry", "melon", "pineapple", "fruit"}},
	{domain.CategoryGrains, []string{"bread", "rice", "pasta", "noodle", "spaghetti", "pizza", "toast", "bagel", "oat", "oats", "quinoa", "tortilla", "bun", "roll", "penne", "linguine", "fettuccine", "risotto", "couscous", "croissant", "sandwich"}},
	{domain.CategoryLegumes, []string{"bean", "lentil", "chickpea", "hummus", "falafel", "tofu", "edamame", "pea", "peas"}},
	{domain.CategoryNuts, []string{"almond", "walnut", "peanut", "cashew", "pistachio", "pecan", "hazelnut", "nut", "nuts"}},
	{domain.CategorySweets, []string{"cake", "tart", "pie", "cookie", "brownie", "chocolate", "tiramisu", "dessert", "gelato", "pudding", "donut", "doughnut", "pastry", "cannoli", "macaron", "sorbet", "candy", "custard", "waffle", "pancake", "muffin"}},
	{domain.CategoryBeverages, []string{"coffee", "tea", "juice", "soda", "latte", "espresso", "smoothie", "shake", "lemonade", "beer", "wine", "cocktail", "water", "cappuccino"}},
}

// KeywordExtractor derives ranked keywords, cooking methods and a category from a term
type KeywordExtractor struct{}

// NewKeywordExtractor creates a keyword extractor
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract builds the keyword set for a cleaned term. Ingredient words come
// first in their original order, followed by cooking methods.
func (e *KeywordExtractor) Extract(term string) domain.KeywordSet {
	var ingredients, methods []string
	seen := make(map[string]bool)

	for _, token := range tokenize(term) {
		if extendedStopWords[token] || seen[token] {
			continue
		}
		seen[token] = true
		if cookingMethods[token] {
			methods = append(methods, token)
			continue
		}
		ingredients = append(ingredients, token)
	}

	return domain.KeywordSet{
		Term:     term,
		Keywords: append(ingredients, methods...),
		Methods:  methods,
		Category: ClassifyCategory(term),
	}
}

// ClassifyCategory returns the first category whose identifiers appear in the
// text. Identifiers of four or more letters match as substrings ("strawberry"
// is a fruit); shorter ones must be a whole token ("ham" but not "graham").
func ClassifyCategory(text string) domain.FoodCategory {
	lower := strings.ToLower(text)
	tokens := make(map[string]bool)
	for _, token := range tokenize(lower) {
		tokens[token] = true
	}

	for _, rule := range categoryRules {
		for _, id := range rule.identifiers {
			if len(id) >= 4 {
				if strings.Contains(lower, id) {
					return rule.category
				}
			} else if tokens[id] {
				return rule.category
			}
		}
	}
	return domain.CategoryUnknown
}

// tokenize lowercases text and splits it into word tokens of two or more characters
func tokenize(text string) []string {
	text = strings.ToLower(text)
	text = punctuationRegex.ReplaceAllString(text, " ")

	var tokens []string
	for _, field := range strings.Fields(text) {
		field = strings.Trim(field, "-'")
		if len(field) < 2 {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}
