package model

type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Success     bool   `json:"success" example:"true"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

type MeResponse struct {
	Success bool     `json:"success" example:"true"`
	Data    Identity `json:"data"`
}

type RecipeListResponse struct {
	Success      bool     `json:"success" example:"true"`
	Message      string   `json:"message"`
	CurrentPage  int      `json:"currentPage"`
	TotalPages   int      `json:"totalPages"`
	TotalRecipes int64    `json:"totalRecipes"`
	Data         []Recipe `json:"data"`
}

type RecipeResponse struct {
	Success bool    `json:"success" example:"true"`
	Message string  `json:"message"`
	Data    *Recipe `json:"data"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
