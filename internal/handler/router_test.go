package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/recipehub/backend/internal/db"
	"github.com/recipehub/backend/internal/model"
	"github.com/recipehub/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubImages struct {
	uploaded []string
	deleted  []string
}

func (s *stubImages) Upload(_ context.Context, path string) (*model.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	s.uploaded = append(s.uploaded, path)
	id := fmt.Sprintf("recipes/img-%d.png", len(s.uploaded))
	return &model.Image{URL: "https://cdn.example.com/" + id, PublicID: id}, nil
}

func (s *stubImages) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

type testServer struct {
	router *gin.Engine
	store  *db.Memory
	images *stubImages
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemory()
	hasher, err := service.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := service.NewTokenManager("handler-test-secret")
	require.NoError(t, err)

	images := &stubImages{}
	authSvc := service.NewAuthService(store, hasher, tokens, service.AuthOptions{})
	recipeSvc := service.NewRecipeService(store, images, nil)

	router := NewRouter(authSvc, recipeSvc, store, RouterOptions{
		Pagination: service.DefaultPaginationPolicy(),
		Uploads:    UploadConfig{Dir: t.TempDir(), MaxBytes: 1024},
	})
	return &testServer{router: router, store: store, images: images}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "Secret1!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Username: username, Password: "Secret1!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAuthMiddlewareRejectsBeforeHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens, err := service.NewTokenManager("secret")
	require.NoError(t, err)
	authSvc := service.NewAuthService(db.NewMemory(), nil, tokens, service.AuthOptions{})

	calls := 0
	r := gin.New()
	r.GET("/protected", AuthMiddleware(authSvc), func(c *gin.Context) {
		calls++
		identity := GetIdentity(c)
		require.NotNil(t, identity)
		c.String(http.StatusOK, identity.Username)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"scheme only", "Bearer", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
	assert.Zero(t, calls)

	token, _, err := tokens.Issue(model.Identity{UserID: "u1", Username: "alice"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
	assert.Equal(t, 1, calls)
}

func TestRecipesRequireToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/recipes/all-recipes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Access denied. Please log in into your account."}`, w.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	w := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.MeResponse](t, w)
	assert.Equal(t, "alice", me.Data.Username)
	assert.Equal(t, "alice@example.com", me.Data.Email)

	dup := s.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name: "Other", Username: "alice", Email: "other@example.com", Password: "Other1!x",
	})
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Equal(t, 1, s.store.UserCount())

	missing := s.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Username: "bob", Password: "Secret1!"})
	assert.Equal(t, http.StatusNotFound, missing.Code)

	wrong := s.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Username: "alice", Password: "Wrong1!x"})
	assert.Equal(t, http.StatusForbidden, wrong.Code)
	assert.False(t, decode[model.ErrorResponse](t, wrong).Success)
}

func TestRegisterValidatesBeforeConflictLookup(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "alice")

	w := s.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name: "Alice Two", Username: "alice2", Email: "alice@example.com", Password: "Other1!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[model.ErrorResponse](t, w)
	assert.Contains(t, resp.Message, "8-16 characters")
	assert.NotContains(t, resp.Message, "already exists")
	assert.Equal(t, 1, s.store.UserCount())

	w = s.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name: "Alice Two", Username: "alice2", Email: "alice@example.com", Password: "Other1!x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User with this username or email already exists.", decode[model.ErrorResponse](t, w).Message)
	assert.Equal(t, 1, s.store.UserCount())
}

func TestRegisterRejectsBadBodies(t *testing.T) {
	s := newTestServer(t)

	unknown := s.do(t, http.MethodPost, "/api/auth/register", "",
		`{"name":"A","username":"alice","email":"a@example.com","password":"Secret1!","admin":true}`)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)

	weak := s.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name: "A", Username: "alice", Email: "a@example.com", Password: "password",
	})
	assert.Equal(t, http.StatusBadRequest, weak.Code)

	badEmail := s.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name: "A", Username: "alice", Email: "not-an-email", Password: "Secret1!",
	})
	assert.Equal(t, http.StatusBadRequest, badEmail.Code)
	assert.Zero(t, s.store.UserCount())
}

func TestRecipeListingOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	for i := 0; i < 12; i++ {
		w := s.do(t, http.MethodPost, "/api/recipes/new", token, map[string]any{
			"title":        fmt.Sprintf("Recipe %02d", i),
			"instructions": "Mix.",
			"ingredients":  []map[string]string{{"name": "flour", "quantity": "1 cup"}},
			"nutrition":    map[string]float64{"calories": 100},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/api/recipes/all-recipes?page=3&limit=5&sortBy=title&sortByOrder=asc", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[model.RecipeListResponse](t, w)
	assert.True(t, page.Success)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(12), page.TotalRecipes)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Recipe 10", page.Data[0].Title)

	w = s.do(t, http.MethodGet, "/api/recipes/all-recipes?page=x&limit=-1&sortBy=title", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	defaults := decode[model.RecipeListResponse](t, w)
	assert.Equal(t, 1, defaults.CurrentPage)
	assert.Len(t, defaults.Data, 5)
	assert.Equal(t, "Recipe 11", defaults.Data[0].Title)

	w = s.do(t, http.MethodGet, "/api/recipes/all-recipes?page=9223372036854775807&limit=50", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	beyond := decode[model.RecipeListResponse](t, w)
	assert.True(t, beyond.Success)
	assert.Empty(t, beyond.Data)
	assert.Equal(t, int64(12), beyond.TotalRecipes)

	other := s.login(t, "bob")
	w = s.do(t, http.MethodGet, "/api/recipes/user-recipes", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[model.RecipeListResponse](t, w)
	assert.Zero(t, mine.TotalRecipes)
	assert.NotNil(t, mine.Data)
}

func TestRecipeCRUDOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	w := s.do(t, http.MethodPost, "/api/recipes/new", alice, map[string]any{
		"title": "Pancakes", "instructions": "Fry.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.RecipeResponse](t, w).Data
	require.NotNil(t, created)

	w = s.do(t, http.MethodGet, "/api/recipes/"+created.ID, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pancakes", decode[model.RecipeResponse](t, w).Data.Title)

	w = s.do(t, http.MethodPut, "/api/recipes/"+created.ID, bob, map[string]any{"title": "Mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/recipes/"+created.ID, alice, map[string]any{"title": "Crepes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.RecipeResponse](t, w).Data
	assert.Equal(t, "Crepes", updated.Title)
	assert.Equal(t, "Fry.", updated.Instructions)

	w = s.do(t, http.MethodPost, "/api/recipes/new", alice, `{"title":"X","instructions":"Y","secret":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid input: request body must be a JSON recipe"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/recipes/new", alice, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "EOF")

	w = s.do(t, http.MethodDelete, "/api/recipes/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, "/api/recipes/"+created.ID, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/recipes/"+created.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, "/api/recipes/does-not-exist", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartRecipe(t *testing.T, contentType string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Toast"))
	require.NoError(t, mw.WriteField("instructions", "Toast the bread."))
	require.NoError(t, mw.WriteField("ingredients", `[{"name":"bread","quantity":"2 slices"}]`))
	require.NoError(t, mw.WriteField("nutrition", `{"calories":150,"proteins":5,"carbs":30,"fat":2}`))

	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="toast.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRecipeMultipartUpload(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	post := func(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/recipes/new", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	body, ct := multipartRecipe(t, "image/png", []byte("\x89PNG\r\n\x1a\nfake"))
	w := post(body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[model.RecipeResponse](t, w).Data
	require.NotNil(t, recipe.ImageURL)
	assert.Equal(t, "https://cdn.example.com/recipes/img-1.png", *recipe.ImageURL)
	assert.Equal(t, "bread", recipe.Ingredients[0].Name)
	assert.Equal(t, 150.0, recipe.Nutrition.Calories)

	require.Len(t, s.images.uploaded, 1)
	_, err := os.Stat(s.images.uploaded[0])
	assert.True(t, os.IsNotExist(err), "temp upload should be removed")

	body, ct = multipartRecipe(t, "text/plain", []byte("hello"))
	w = post(body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartRecipe(t, "image/png", bytes.Repeat([]byte{0xff}, 2048))
	w = post(body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, s.images.uploaded, 1)

	body, ct = multipartRecipe(t, "image/png", bytes.Repeat([]byte{0xff}, 2<<20))
	w = post(body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid input: malformed multipart form"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "http:")
	assert.Len(t, s.images.uploaded, 1)
}

func TestHandlerPanicUsesErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	s.router.GET("/explode", func(*gin.Context) { panic("kaboom") })

	w := s.do(t, http.MethodGet, "/explode", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Something went wrong. Please try again."}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/openapi.json", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/recipes/all-recipes")
	doc := decode[map[string]any](t, w)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, route := range []string{"/api/auth/register", "/api/auth/login", "/api/auth/me", "/api/recipes/new", "/api/recipes/{id}"} {
		assert.Contains(t, paths, route)
	}
}
