package domain

import (
	"fmt"
	"strings"
)

// Category identifies a record kind. The set is fixed.
type Category string

const (
	CategorySleep         Category = "sleep"
	CategoryBreakfast     Category = "breakfast"
	CategoryWork          Category = "work"
	CategoryHousework     Category = "housework"
	CategoryStudy         Category = "study"
	CategoryLunch         Category = "lunch"
	CategoryNap           Category = "nap"
	CategoryExercise      Category = "exercise"
	CategoryDinner        Category = "dinner"
	CategoryGame          Category = "game"
	CategoryEntertainment Category = "entertainment"
	CategoryFinance       Category = "finance"
	CategorySupplements   Category = "supplements"
	CategoryBodycare      Category = "bodycare"
)

// allCategories is the canonical order used for iteration and display.
var allCategories = []Category{
	CategorySleep,
	CategoryBreakfast,
	CategoryWork,
	CategoryHousework,
	CategoryStudy,
	CategoryLunch,
	CategoryNap,
	CategoryExercise,
	CategoryDinner,
	CategoryGame,
	CategoryEntertainment,
	CategoryFinance,
	CategorySupplements,
	CategoryBodycare,
}

type categoryInfo struct {
	label      string
	storageKey string
	schema     Schema
}

var mealSchema = Schema{Fields: []Field{
	{Name: "content", Type: FieldText},
	{Name: "feeling", Type: FieldText},
}}

var financeItemFields = []Field{
	{Name: "id", Type: FieldNumber},
	{Name: "amount", Type: FieldNumber},
	{Name: "category", Type: FieldText},
	{Name: "paymentMethod", Type: FieldText},
	{Name: "description", Type: FieldText},
	{Name: "date", Type: FieldText},
	{Name: "type", Type: FieldText},
}

var categories = map[Category]categoryInfo{
	CategorySleep: {label: "Sleep", storageKey: "sleepData", schema: Schema{Fields: []Field{
		{Name: "duration", Type: FieldNumber},
		{Name: "quality", Type: FieldNumber},
		{Name: "feeling", Type: FieldText},
	}}},
	CategoryBreakfast: {label: "Breakfast", storageKey: "breakfastData", schema: mealSchema},
	CategoryWork: {label: "Work", storageKey: "workData", schema: Schema{Fields: []Field{
		{Name: "todo", Type: FieldTextList},
		{Name: "done", Type: FieldTextList},
	}}},
	CategoryHousework: {label: "Housework", storageKey: "houseworkData", schema: Schema{Fields: []Field{
		{Name: "garbage", Type: FieldBool},
		{Name: "cooking", Type: FieldBool},
		{Name: "laundry", Type: FieldBool},
		{Name: "hangingClothes", Type: FieldBool},
		{Name: "foldingClothes", Type: FieldBool},
		{Name: "cleaningKitchen", Type: FieldBool},
		{Name: "cleaningTable", Type: FieldBool},
		{Name: "cleaningBed", Type: FieldBool},
		{Name: "cleaningFridge", Type: FieldBool},
		{Name: "feeling", Type: FieldText},
		{Name: "score", Type: FieldNumber},
	}}},
	CategoryStudy: {label: "Study", storageKey: "studyData", schema: Schema{Fields: []Field{
		{Name: "subject", Type: FieldText},
		{Name: "duration", Type: FieldNumber},
		{Name: "content", Type: FieldText},
		{Name: "summary", Type: FieldText},
	}}},
	CategoryLunch: {label: "Lunch", storageKey: "lunchData", schema: mealSchema},
	CategoryNap: {label: "Nap", storageKey: "napData", schema: Schema{Fields: []Field{
		{Name: "duration", Type: FieldNumber},
		{Name: "quality", Type: FieldNumber},
		{Name: "feeling", Type: FieldText},
	}}},
	CategoryExercise: {label: "Exercise", storageKey: "exerciseData", schema: Schema{Fields: []Field{
		{Name: "type", Type: FieldText},
		{Name: "duration", Type: FieldNumber},
		{Name: "item", Type: FieldText},
		{Name: "calories", Type: FieldNumber},
		{Name: "feeling", Type: FieldText},
	}}},
	CategoryDinner: {label: "Dinner", storageKey: "dinnerData", schema: mealSchema},
	CategoryGame: {label: "Game", storageKey: "gameData", schema: Schema{Fields: []Field{
		{Name: "type", Type: FieldText},
		{Name: "name", Type: FieldText},
		{Name: "progress", Type: FieldText},
		{Name: "feeling", Type: FieldText},
		{Name: "weather", Type: FieldText},
		{Name: "npc", Type: FieldText},
		{Name: "event", Type: FieldText},
		{Name: "interactions", Type: FieldObject},
	}}},
	CategoryEntertainment: {label: "Entertainment", storageKey: "entertainmentData", schema: Schema{Fields: []Field{
		{Name: "type", Type: FieldText},
		{Name: "content", Type: FieldText},
		{Name: "feeling", Type: FieldText},
	}}},
	CategoryFinance: {label: "Finance", storageKey: "financeData", schema: Schema{Fields: []Field{
		{Name: "incomes", Type: FieldItemList, Items: financeItemFields},
		{Name: "expenses", Type: FieldItemList, Items: financeItemFields},
	}}},
	CategorySupplements: {label: "Supplements", storageKey: "supplementData", schema: Schema{Fields: []Field{
		{Name: "iron", Type: FieldBool},
		{Name: "vitaminDK", Type: FieldBool},
		{Name: "magnesium", Type: FieldBool},
		{Name: "date", Type: FieldText},
	}}},
	CategoryBodycare: {label: "Body care", storageKey: "bodycareData", schema: Schema{Fields: []Field{
		{Name: "scrub", Type: FieldBool},
		{Name: "hairRemoval", Type: FieldBool},
		{Name: "lotion", Type: FieldBool},
		{Name: "date", Type: FieldText},
	}}},
}

// Categories returns every known category in display order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory resolves a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Label is the human-readable name.
func (c Category) Label() string {
	if info, ok := categories[c]; ok {
		return info.label
	}
	return string(c)
}

// Schema returns the declared field schema. Unknown categories have none.
func (c Category) Schema() Schema {
	return categories[c].schema
}

// ArchivedKey is the persistent key holding the finalized history.
func (c Category) ArchivedKey() string {
	return categories[c].storageKey
}

// PendingKey is the persistent key holding unarchived entries.
func (c Category) PendingKey() string {
	return categories[c].storageKey + "_TEMP"
}

// ImportantDatesKey is the persistent key of the important-date mapping.
const ImportantDatesKey = "importantDates"
