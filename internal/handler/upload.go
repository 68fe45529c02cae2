package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/recipehub/backend/internal/model"
	"github.com/recipehub/backend/internal/service"
)

// multipartOverhead is the room left for form fields on top of the image.
const multipartOverhead = 1 << 20

// UploadConfig controls where the "image" form part is spooled before it is
// handed to the image store.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// recipePayload is the body of create/update requests, sent either as JSON or
// as multipart form fields where ingredients and nutrition hold JSON text.
type recipePayload struct {
	Title        *string             `json:"title"`
	Instructions *string             `json:"instructions"`
	Ingredients  *[]model.Ingredient `json:"ingredients"`
	Nutrition    *model.Nutrition    `json:"nutrition"`
}

func (p recipePayload) input() model.RecipeInput {
	in := model.RecipeInput{}
	if p.Title != nil {
		in.Title = strings.TrimSpace(*p.Title)
	}
	if p.Instructions != nil {
		in.Instructions = strings.TrimSpace(*p.Instructions)
	}
	if p.Ingredients != nil {
		in.Ingredients = *p.Ingredients
	}
	if p.Nutrition != nil {
		in.Nutrition = *p.Nutrition
	}
	return in
}

func (p recipePayload) update() model.RecipeUpdate {
	in := p.input()
	return model.RecipeUpdate{
		Title:        in.Title,
		Instructions: in.Instructions,
		Ingredients:  p.Ingredients,
		Nutrition:    p.Nutrition,
	}
}

// readRecipePayload decodes the request body. For multipart requests the
// optional image is written to a temp file; the returned cleanup removes it
// and must always be called.
func (u UploadConfig) readRecipePayload(c *gin.Context) (recipePayload, string, func(), error) {
	noop := func() {}
	var p recipePayload

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		if err := c.ShouldBindJSON(&p); err != nil {
			return p, "", noop, rejectInput(c, "request body must be a JSON recipe", err)
		}
		return p, "", noop, nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.MaxBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(u.MaxBytes); err != nil {
		return p, "", noop, rejectInput(c, "malformed multipart form", err)
	}
	form := c.Request.MultipartForm
	releaseForm := func() { _ = form.RemoveAll() }

	if v, ok := c.GetPostForm("title"); ok {
		p.Title = &v
	}
	if v, ok := c.GetPostForm("instructions"); ok {
		p.Instructions = &v
	}
	if v, ok := c.GetPostForm("ingredients"); ok {
		var ingredients []model.Ingredient
		if err := decodeStrict(v, &ingredients); err != nil {
			return p, "", releaseForm, rejectInput(c, "ingredients must be a JSON array of {name, quantity}", err)
		}
		p.Ingredients = &ingredients
	}
	if v, ok := c.GetPostForm("nutrition"); ok {
		var nutrition model.Nutrition
		if err := decodeStrict(v, &nutrition); err != nil {
			return p, "", releaseForm, rejectInput(c, "nutrition must be a JSON object", err)
		}
		p.Nutrition = &nutrition
	}

	path, removeImage, err := u.receiveImage(c)
	if err != nil {
		return p, "", releaseForm, err
	}
	return p, path, func() {
		removeImage()
		releaseForm()
	}, nil
}

// receiveImage stores the "image" part, if any, in Dir.
func (u UploadConfig) receiveImage(c *gin.Context) (string, func(), error) {
	noop := func() {}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", noop, nil
	}
	if err != nil {
		return "", noop, rejectInput(c, "invalid image upload", err)
	}

	if header.Size > u.MaxBytes {
		return "", noop, fmt.Errorf("%w: image exceeds %d bytes", service.ErrInvalidInput, u.MaxBytes)
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "", noop, fmt.Errorf("%w: not an image, please only upload images", service.ErrInvalidInput)
	}

	tmp, err := os.CreateTemp(u.Dir, "recipe-*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		return "", noop, fmt.Errorf("create upload file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()

	cleanup := func() { _ = os.Remove(path) }
	if err := c.SaveUploadedFile(header, path); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("save upload: %w", err)
	}
	return path, cleanup, nil
}

// rejectInput logs the parser error and returns a client-safe ErrInvalidInput
// carrying only msg.
func rejectInput(c *gin.Context, msg string, err error) error {
	slog.WarnContext(c.Request.Context(), "rejected request body",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"reason", msg,
		"error", err,
	)
	return fmt.Errorf("%w: %s", service.ErrInvalidInput, msg)
}

func decodeStrict(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
