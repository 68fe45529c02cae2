package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"valid", RegisterRequest{Name: "Alice", Username: "alice", Email: "alice@x.com", Password: "Passw0rd!"}, false},
		{"missing name", RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "Passw0rd!"}, true},
		{"bad email", RegisterRequest{Name: "Alice", Username: "alice", Email: "alice", Password: "Passw0rd!"}, true},
		{"short password", RegisterRequest{Name: "Alice", Username: "alice", Email: "alice@x.com", Password: "Pa0!"}, true},
		{"no special", RegisterRequest{Name: "Alice", Username: "alice", Email: "alice@x.com", Password: "Passw0rdd"}, true},
		{"no upper", RegisterRequest{Name: "Alice", Username: "alice", Email: "alice@x.com", Password: "passw0rd!"}, true},
		{"illegal char", RegisterRequest{Name: "Alice", Username: "alice", Email: "alice@x.com", Password: "Passw0rd!#"}, true},
		{"too long", RegisterRequest{Name: "Alice", Username: "alice", Email: "alice@x.com", Password: "Passw0rd!Passw0rd!"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterRequestNormalize(t *testing.T) {
	req := RegisterRequest{Name: " Alice ", Username: " alice ", Email: " Alice@X.com ", Password: " Passw0rd! "}.Normalize()

	assert.Equal(t, "Alice", req.Name)
	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "alice@x.com", req.Email)
	assert.Equal(t, " Passw0rd! ", req.Password)
}

func TestRecipeInputValidate(t *testing.T) {
	valid := RecipeInput{
		Title:        "Pancakes",
		Instructions: "Mix and fry.",
		Ingredients:  []Ingredient{{Name: "flour", Quantity: "200g"}},
		Nutrition:    Nutrition{Calories: 350},
	}
	assert.NoError(t, valid.Validate())

	noTitle := valid
	noTitle.Title = ""
	assert.Error(t, noTitle.Validate())

	badIngredient := valid
	badIngredient.Ingredients = []Ingredient{{Name: "flour"}}
	assert.Error(t, badIngredient.Validate())

	negative := valid
	negative.Nutrition = Nutrition{Fat: -1}
	assert.Error(t, negative.Validate())
}

func TestRecipeUpdateApply(t *testing.T) {
	recipe := &Recipe{
		Title:        "Pancakes",
		Instructions: "Mix and fry.",
		Ingredients:  []Ingredient{{Name: "flour", Quantity: "200g"}},
	}
	ingredients := []Ingredient{{Name: "oat", Quantity: "1 cup"}}

	update := RecipeUpdate{Instructions: "Bake.", Ingredients: &ingredients}
	assert.NoError(t, update.Validate())
	update.Apply(recipe)

	assert.Equal(t, "Pancakes", recipe.Title)
	assert.Equal(t, "Bake.", recipe.Instructions)
	assert.Equal(t, ingredients, recipe.Ingredients)
	assert.Equal(t, Nutrition{}, recipe.Nutrition)
}
