package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/recipehub/backend/internal/model"
)

const (
	defaultPage  = 1
	defaultLimit = 5
	maxLimit     = 50
)

var sortableFields = map[string]struct{}{
	model.SortByCreatedAt:    {},
	model.SortByUpdatedAt:    {},
	model.SortByTitle:        {},
	model.SortByInstructions: {},
}

// PaginationPolicy bounds page sizes. Requests above MaxLimit are clamped.
type PaginationPolicy struct {
	DefaultLimit int
	MaxLimit     int
}

func DefaultPaginationPolicy() PaginationPolicy {
	return PaginationPolicy{DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// NewListQuery resolves raw query parameters into a ListQuery. Missing,
// non-numeric or non-positive page/limit values fall back to the defaults,
// unknown sort fields fall back to createdAt and any order other than "asc"
// sorts descending.
func NewListQuery(page, limit, sortBy, order string, policy PaginationPolicy) model.ListQuery {
	if policy.DefaultLimit < 1 {
		policy.DefaultLimit = defaultLimit
	}
	if policy.MaxLimit < policy.DefaultLimit {
		policy.MaxLimit = policy.DefaultLimit
	}

	p := parsePositive(page, defaultPage)
	l := parsePositive(limit, policy.DefaultLimit)
	if l > policy.MaxLimit {
		l = policy.MaxLimit
	}
	// keep (p-1)*l within int
	if maxPage := math.MaxInt / l; p > maxPage {
		p = maxPage
	}

	sortBy = strings.TrimSpace(sortBy)
	if _, ok := sortableFields[sortBy]; !ok {
		sortBy = model.SortByCreatedAt
	}

	return model.ListQuery{
		Page:   p,
		Limit:  l,
		Skip:   (p - 1) * l,
		SortBy: sortBy,
		Desc:   order != "asc",
	}
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
