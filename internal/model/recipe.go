package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Sortable recipe fields, as accepted in the sortBy query parameter.
const (
	SortByCreatedAt    = "createdAt"
	SortByUpdatedAt    = "updatedAt"
	SortByTitle        = "title"
	SortByInstructions = "instructions"
)

type Ingredient struct {
	Name     string `json:"name" bson:"name"`
	Quantity string `json:"quantity" bson:"quantity"`
}

func (i Ingredient) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&i.Quantity, validation.Required, validation.Length(1, 100)),
	)
}

type Nutrition struct {
	Calories float64 `json:"calories" bson:"calories"`
	Proteins float64 `json:"proteins" bson:"proteins"`
	Carbs    float64 `json:"carbs" bson:"carbs"`
	Fat      float64 `json:"fat" bson:"fat"`
}

func (n Nutrition) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Calories, validation.Min(0.0)),
		validation.Field(&n.Proteins, validation.Min(0.0)),
		validation.Field(&n.Carbs, validation.Min(0.0)),
		validation.Field(&n.Fat, validation.Min(0.0)),
	)
}

type Recipe struct {
	ID            string       `json:"id" bson:"_id"`
	Title         string       `json:"title" bson:"title"`
	Instructions  string       `json:"instructions" bson:"instructions"`
	Ingredients   []Ingredient `json:"ingredients" bson:"ingredients"`
	Nutrition     Nutrition    `json:"nutrition" bson:"nutrition"`
	ImageURL      *string      `json:"imageUrl" bson:"imageUrl"`
	ImagePublicID *string      `json:"imagePublicId" bson:"imagePublicId"`
	PublisherID   string       `json:"publisherId" bson:"publisherId"`
	CreatedAt     time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// RecipeInput carries the fields of a new recipe.
type RecipeInput struct {
	Title        string
	Instructions string
	Ingredients  []Ingredient
	Nutrition    Nutrition
}

func (r RecipeInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Instructions, validation.Required, validation.Length(1, 20000)),
		validation.Field(&r.Ingredients),
		validation.Field(&r.Nutrition),
	)
}

// RecipeUpdate carries a partial update. Empty strings and nil pointers keep
// the stored value.
type RecipeUpdate struct {
	Title        string
	Instructions string
	Ingredients  *[]Ingredient
	Nutrition    *Nutrition
}

func (r RecipeUpdate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 200)),
		validation.Field(&r.Instructions, validation.Length(1, 20000)),
		validation.Field(&r.Ingredients),
		validation.Field(&r.Nutrition),
	)
}

// Apply merges the update into recipe.
func (r RecipeUpdate) Apply(recipe *Recipe) {
	if r.Title != "" {
		recipe.Title = r.Title
	}
	if r.Instructions != "" {
		recipe.Instructions = r.Instructions
	}
	if r.Ingredients != nil {
		recipe.Ingredients = *r.Ingredients
	}
	if r.Nutrition != nil {
		recipe.Nutrition = *r.Nutrition
	}
}

// Image is a stored image as returned by the image store.
type Image struct {
	URL      string
	PublicID string
}

// ListQuery is a resolved page request: Skip is (Page-1)*Limit.
type ListQuery struct {
	Page   int
	Limit  int
	Skip   int
	SortBy string
	Desc   bool
}

// RecipeFilter narrows a listing. An empty PublisherID matches every recipe.
type RecipeFilter struct {
	PublisherID string
}

type RecipePage struct {
	Items       []Recipe
	CurrentPage int
	TotalPages  int
	Total       int64
}
