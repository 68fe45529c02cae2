package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recipehub/backend/internal/db"
	"github.com/recipehub/backend/internal/model"
)

var ErrImagesDisabled = errors.New("image uploads are disabled")

type RecipeRepository interface {
	CountRecipes(ctx context.Context, filter model.RecipeFilter) (int64, error)
	ListRecipes(ctx context.Context, filter model.RecipeFilter, q model.ListQuery) ([]model.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	CreateRecipe(ctx context.Context, recipe *model.Recipe) error
	UpdateRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, id string) error
}

// ImageStore hosts recipe images outside the database.
type ImageStore interface {
	Upload(ctx context.Context, path string) (*model.Image, error)
	Delete(ctx context.Context, publicID string) error
}

type RecipeService struct {
	repo   RecipeRepository
	images ImageStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRecipeService wires the recipe use cases. images may be nil, in which
// case requests carrying an image fail with ErrImagesDisabled.
func NewRecipeService(repo RecipeRepository, images ImageStore, logger *slog.Logger) *RecipeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeService{repo: repo, images: images, logger: logger, now: time.Now}
}

// List returns one page of recipes matching filter together with the totals
// of the whole filtered collection.
func (s *RecipeService) List(ctx context.Context, q model.ListQuery, filter model.RecipeFilter) (*model.RecipePage, error) {
	total, err := s.repo.CountRecipes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}

	items, err := s.repo.ListRecipes(ctx, filter, q)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if items == nil {
		items = []model.Recipe{}
	}

	return &model.RecipePage{
		Items:       items,
		CurrentPage: q.Page,
		TotalPages:  TotalPages(total, q.Limit),
		Total:       total,
	}, nil
}

// ListOwned is List scoped to the recipes published by identity.
func (s *RecipeService) ListOwned(ctx context.Context, identity *model.Identity, q model.ListQuery) (*model.RecipePage, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}
	return s.List(ctx, q, model.RecipeFilter{PublisherID: identity.UserID})
}

func (s *RecipeService) Get(ctx context.Context, id string) (*model.Recipe, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	recipe, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return recipe, nil
}

// Create stores a new recipe published by identity. imagePath is the local
// path of an uploaded image, or empty.
func (s *RecipeService) Create(ctx context.Context, identity *model.Identity, in model.RecipeInput, imagePath string) (*model.Recipe, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	recipe := &model.Recipe{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Instructions: in.Instructions,
		Ingredients:  in.Ingredients,
		Nutrition:    in.Nutrition,
		PublisherID:  identity.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []model.Ingredient{}
	}

	if imagePath != "" {
		image, err := s.upload(ctx, imagePath)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = &image.URL
		recipe.ImagePublicID = &image.PublicID
	}

	if err := s.repo.CreateRecipe(ctx, recipe); err != nil {
		if recipe.ImagePublicID != nil {
			s.discardImage(ctx, *recipe.ImagePublicID)
		}
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return recipe, nil
}

// Update applies a partial update. A new image replaces the stored one, which
// is removed from the image store first.
func (s *RecipeService) Update(ctx context.Context, identity *model.Identity, id string, in model.RecipeUpdate, imagePath string) (*model.Recipe, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	recipe, err := s.owned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	// previous image is removed only once the replacement is saved
	var previous, replacement string
	if imagePath != "" {
		if s.images == nil {
			return nil, ErrImagesDisabled
		}
		image, err := s.upload(ctx, imagePath)
		if err != nil {
			return nil, err
		}
		if recipe.ImagePublicID != nil {
			previous = *recipe.ImagePublicID
		}
		replacement = image.PublicID
		recipe.ImageURL = &image.URL
		recipe.ImagePublicID = &image.PublicID
	}

	in.Apply(recipe)
	recipe.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateRecipe(ctx, recipe); err != nil {
		if replacement != "" {
			s.discardImage(ctx, replacement)
		}
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	if previous != "" {
		s.discardImage(ctx, previous)
	}
	return recipe, nil
}

func (s *RecipeService) Delete(ctx context.Context, identity *model.Identity, id string) error {
	recipe, err := s.owned(ctx, identity, id)
	if err != nil {
		return err
	}

	if recipe.ImagePublicID != nil && *recipe.ImagePublicID != "" && s.images != nil {
		if err := s.images.Delete(ctx, *recipe.ImagePublicID); err != nil {
			return fmt.Errorf("delete image: %w", err)
		}
	}

	if err := s.repo.DeleteRecipe(ctx, id); err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

func (s *RecipeService) owned(ctx context.Context, identity *model.Identity, id string) (*model.Recipe, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.PublisherID != identity.UserID {
		return nil, ErrForbidden
	}
	return recipe, nil
}

func (s *RecipeService) upload(ctx context.Context, path string) (*model.Image, error) {
	if s.images == nil {
		return nil, ErrImagesDisabled
	}
	image, err := s.images.Upload(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return image, nil
}

func (s *RecipeService) discardImage(ctx context.Context, publicID string) {
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.logger.WarnContext(ctx, "failed to remove orphaned image", "public_id", publicID, "error", err)
	}
}
