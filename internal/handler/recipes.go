package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipehub/backend/internal/model"
	"github.com/recipehub/backend/internal/service"
)

type RecipeHandler struct {
	svc     *service.RecipeService
	policy  service.PaginationPolicy
	uploads UploadConfig
}

func NewRecipeHandler(svc *service.RecipeService, policy service.PaginationPolicy, uploads UploadConfig) *RecipeHandler {
	return &RecipeHandler{svc: svc, policy: policy, uploads: uploads}
}

func (h *RecipeHandler) listQuery(c *gin.Context) model.ListQuery {
	return service.NewListQuery(
		c.Query("page"),
		c.Query("limit"),
		c.Query("sortBy"),
		c.Query("sortByOrder"),
		h.policy,
	)
}

func writeRecipePage(c *gin.Context, page *model.RecipePage) {
	c.JSON(http.StatusOK, model.RecipeListResponse{
		Success:      true,
		Message:      "Successfully fetched recipes.",
		CurrentPage:  page.CurrentPage,
		TotalPages:   page.TotalPages,
		TotalRecipes: page.Total,
		Data:         page.Items,
	})
}

// ListAll godoc
// @Summary List recipes
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(5)
// @Param sortBy query string false "createdAt, updatedAt, title or instructions" default(createdAt)
// @Param sortByOrder query string false "asc or desc" default(desc)
// @Success 200 {object} model.RecipeListResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/recipes/all-recipes [get]
func (h *RecipeHandler) ListAll(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), h.listQuery(c), model.RecipeFilter{})
	if err != nil {
		writeError(c, err, errorMessages{Internal: "Could not fetch recipes. Please try again."})
		return
	}
	writeRecipePage(c, page)
}

// ListMine godoc
// @Summary List the caller's recipes
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(5)
// @Param sortBy query string false "createdAt, updatedAt, title or instructions" default(createdAt)
// @Param sortByOrder query string false "asc or desc" default(desc)
// @Success 200 {object} model.RecipeListResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/recipes/user-recipes [get]
func (h *RecipeHandler) ListMine(c *gin.Context) {
	page, err := h.svc.ListOwned(c.Request.Context(), GetIdentity(c), h.listQuery(c))
	if err != nil {
		writeError(c, err, errorMessages{Internal: "Could not fetch recipes. Please try again."})
		return
	}
	writeRecipePage(c, page)
}

// Get godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} model.RecipeResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/recipes/{id} [get]
func (h *RecipeHandler) Get(c *gin.Context) {
	id := c.Param("id")
	recipe, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, errorMessages{
			NotFound: fmt.Sprintf("Recipe %s doesn't exist.", id),
			Internal: "Could not fetch recipe. Please try again.",
		})
		return
	}
	c.JSON(http.StatusOK, model.RecipeResponse{
		Success: true,
		Message: "Recipe was successfully found.",
		Data:    recipe,
	})
}

// Create godoc
// @Summary Create a recipe
// @Description Accepts JSON, or multipart/form-data with ingredients and nutrition as JSON text and an optional image.
// @Tags recipes
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param instructions formData string true "Instructions"
// @Param ingredients formData string false "JSON array of {name, quantity}"
// @Param nutrition formData string false "JSON object {calories, proteins, carbs, fat}"
// @Param image formData file false "Recipe image (max 5MB)"
// @Success 201 {object} model.RecipeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/recipes/new [post]
func (h *RecipeHandler) Create(c *gin.Context) {
	payload, imagePath, cleanup, err := h.uploads.readRecipePayload(c)
	defer cleanup()
	if err != nil {
		writeError(c, err, errorMessages{})
		return
	}

	recipe, err := h.svc.Create(c.Request.Context(), GetIdentity(c), payload.input(), imagePath)
	if err != nil {
		writeError(c, err, errorMessages{Internal: "Could not create recipe. Please try again."})
		return
	}

	c.JSON(http.StatusCreated, model.RecipeResponse{
		Success: true,
		Message: "Recipe was successfully created!",
		Data:    recipe,
	})
}

// Update godoc
// @Summary Update a recipe
// @Description Omitted fields keep their stored value. A new image replaces the previous one.
// @Tags recipes
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Param title formData string false "Title"
// @Param instructions formData string false "Instructions"
// @Param ingredients formData string false "JSON array of {name, quantity}"
// @Param nutrition formData string false "JSON object {calories, proteins, carbs, fat}"
// @Param image formData file false "Recipe image (max 5MB)"
// @Success 200 {object} model.RecipeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/recipes/{id} [put]
func (h *RecipeHandler) Update(c *gin.Context) {
	id := c.Param("id")
	payload, imagePath, cleanup, err := h.uploads.readRecipePayload(c)
	defer cleanup()
	if err != nil {
		writeError(c, err, errorMessages{})
		return
	}

	recipe, err := h.svc.Update(c.Request.Context(), GetIdentity(c), id, payload.update(), imagePath)
	if err != nil {
		writeError(c, err, errorMessages{
			NotFound: fmt.Sprintf("Recipe %s could not be found. Please try again with valid data.", id),
			Internal: "Could not update recipe. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, model.RecipeResponse{
		Success: true,
		Message: "Recipe was successfully updated.",
		Data:    recipe,
	})
}

// Delete godoc
// @Summary Delete a recipe
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/recipes/{id} [delete]
func (h *RecipeHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), GetIdentity(c), id); err != nil {
		writeError(c, err, errorMessages{
			NotFound: fmt.Sprintf("Recipe %s could not be found. Please try again with valid data.", id),
			Internal: "Could not delete recipe. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Recipe %s was successfully deleted.", id),
	})
}
