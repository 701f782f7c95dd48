package usecase

import "github.com/mealmap/backend/internal/domain"

// Ingredient is one entry of the built-in fallback table
type Ingredient struct {
	Name     string
	Keywords []string
	Category domain.FoodCategory
}

// categoryBaseNutrition is a typical restaurant serving for each category
var categoryBaseNutrition = map[domain.FoodCategory]domain.NutrientRecord{
	domain.CategoryPoultry:    {domain.NutrientCalories: 250, domain.NutrientCarbohydrates: 2, domain.NutrientProtein: 30, domain.NutrientFat: 12, domain.NutrientSodium: 450},
	domain.CategoryMeat:       {domain.NutrientCalories: 320, domain.NutrientCarbohydrates: 3, domain.NutrientProtein: 26, domain.NutrientFat: 22, domain.NutrientSodium: 550},
	domain.CategorySeafood:    {domain.NutrientCalories: 220, domain.NutrientCarbohydrates: 4, domain.NutrientProtein: 28, domain.NutrientFat: 9, domain.NutrientSodium: 500},
	domain.CategoryDairy:      {domain.NutrientCalories: 180, domain.NutrientCarbohydrates: 6, domain.NutrientProtein: 11, domain.NutrientFat: 13, domain.NutrientSugar: 4, domain.NutrientSodium: 300},
	domain.CategoryVegetables: {domain.NutrientCalories: 90, domain.NutrientCarbohydrates: 15, domain.NutrientProtein: 3, domain.NutrientFat: 3, domain.NutrientFiber: 4, domain.NutrientSugar: 5, domain.NutrientSodium: 150},
	domain.CategoryFruits:     {domain.NutrientCalories: 95, domain.NutrientCarbohydrates: 24, domain.NutrientProtein: 1, domain.NutrientFat: 0.3, domain.NutrientFiber: 3, domain.NutrientSugar: 18, domain.NutrientSodium: 2},
	domain.CategoryGrains:     {domain.NutrientCalories: 280, domain.NutrientCarbohydrates: 52, domain.NutrientProtein: 8, domain.NutrientFat: 4, domain.NutrientFiber: 3, domain.NutrientSugar: 3, domain.NutrientSodium: 400},
	domain.CategoryLegumes:    {domain.NutrientCalories: 230, domain.NutrientCarbohydrates: 35, domain.NutrientProtein: 14, domain.NutrientFat: 4, domain.NutrientFiber: 12, domain.NutrientSugar: 3, domain.NutrientSodium: 350},
	domain.CategoryNuts:       {domain.NutrientCalories: 170, domain.NutrientCarbohydrates: 6, domain.NutrientProtein: 6, domain.NutrientFat: 15, domain.NutrientFiber: 3, domain.NutrientSugar: 1, domain.NutrientSodium: 90},
	domain.CategorySweets:     {domain.NutrientCalories: 380, domain.NutrientCarbohydrates: 48, domain.NutrientProtein: 5, domain.NutrientFat: 18, domain.NutrientSugar: 32, domain.NutrientSodium: 200},
	domain.CategoryBeverages:  {domain.NutrientCalories: 120, domain.NutrientCarbohydrates: 28, domain.NutrientProtein: 1, domain.NutrientFat: 1, domain.NutrientSugar: 25, domain.NutrientSodium: 30},
}

// defaultIngredients is the local tier's table; keywords are matched against the term
var defaultIngredients = []Ingredient{
	{"Chicken", []string{"chicken"}, domain.CategoryPoultry},
	{"Turkey", []string{"turkey"}, domain.CategoryPoultry},
	{"Duck", []string{"duck"}, domain.CategoryPoultry},
	{"Beef", []string{"beef", "steak", "brisket"}, domain.CategoryMeat},
	{"Pork", []string{"pork", "carnitas"}, domain.CategoryMeat},
	{"Ham", []string{"ham", "prosciutto"}, domain.CategoryMeat},
	{"Bacon", []string{"bacon", "pancetta"}, domain.CategoryMeat},
	{"Lamb", []string{"lamb"}, domain.CategoryMeat},
	{"Sausage", []string{"sausage", "chorizo", "salami", "pepperoni"}, domain.CategoryMeat},
	{"Salmon", []string{"salmon"}, domain.CategorySeafood},
	{"Tuna", []string{"tuna"}, domain.CategorySeafood},
	{"Shrimp", []string{"shrimp", "prawn", "prawns"}, domain.CategorySeafood},
	{"White fish", []string{"cod", "tilapia", "halibut", "whitefish"}, domain.CategorySeafood},
	{"Crab", []string{"crab"}, domain.CategorySeafood},
	{"Egg", []string{"egg", "eggs", "omelette", "omelet"}, domain.CategoryDairy},
	{"Cheese", []string{"cheese", "cheddar", "mozzarella", "parmesan"}, domain.CategoryDairy},
	{"Yogurt", []string{"yogurt", "yoghurt"}, domain.CategoryDairy},
	{"Milk", []string{"milk"}, domain.CategoryDairy},
	{"Mixed greens", []string{"salad", "lettuce", "greens", "spinach", "kale"}, domain.CategoryVegetables},
	{"Broccoli", []string{"broccoli"}, domain.CategoryVegetables},
	{"Potato", []string{"potato", "potatoes", "fries"}, domain.CategoryVegetables},
	{"Tomato", []string{"tomato", "tomatoes"}, domain.CategoryVegetables},
	{"Mushroom", []string{"mushroom", "mushrooms"}, domain.CategoryVegetables},
	{"Carrot", []string{"carrot", "carrots"}, domain.CategoryVegetables},
	{"Apple", []string{"apple", "apples"}, domain.CategoryFruits},
	{"Banana", []string{"banana"}, domain.CategoryFruits},
	{"Berries", []string{"berries", "strawberry", "blueberry", "raspberry"}, domain.CategoryFruits},
	{"Rice", []string{"rice", "risotto"}, domain.CategoryGrains},
	{"Pasta", []string{"pasta", "spaghetti", "penne", "linguine", "fettuccine"}, domain.CategoryGrains},
	{"Bread", []string{"bread", "toast", "baguette", "focaccia"}, domain.CategoryGrains},
	{"Oatmeal", []string{"oatmeal", "oats", "porridge"}, domain.CategoryGrains},
	{"Tortilla", []string{"tortilla", "tortillas"}, domain.CategoryGrains},
	{"Black beans", []string{"beans", "frijoles"}, domain.CategoryLegumes},
	{"Lentils", []string{"lentil", "lentils", "dal"}, domain.CategoryLegumes},
	{"Chickpeas", []string{"chickpea", "chickpeas", "hummus", "falafel"}, domain.CategoryLegumes},
	{"Tofu", []string{"tofu"}, domain.CategoryLegumes},
	{"Almonds", []string{"almond", "almonds"}, domain.CategoryNuts},
	{"Peanuts", []string{"peanut", "peanuts"}, domain.CategoryNuts},
	{"Chocolate", []string{"chocolate", "brownie"}, domain.CategorySweets},
	{"Ice cream", []string{"ice cream", "gelato"}, domain.CategorySweets},
	{"Coffee", []string{"coffee", "espresso", "latte", "cappuccino"}, domain.CategoryBeverages},
	{"Orange juice", []string{"orange juice", "juice"}, domain.CategoryBeverages},
}
