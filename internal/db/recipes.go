package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/recipehub/backend/internal/model"
)

const recipeColumns = `id, title, instructions, ingredients, nutrition, image_url, image_public_id, publisher_id, created_at, updated_at`

var recipeSortColumns = map[string]string{
	model.SortByCreatedAt:    "created_at",
	model.SortByUpdatedAt:    "updated_at",
	model.SortByTitle:        "title",
	model.SortByInstructions: "instructions",
}

// recipeOrderClause only emits whitelisted column names. The id tiebreaker
// follows the same direction so that asc and desc orderings mirror each other.
func recipeOrderClause(q model.ListQuery) string {
	column, ok := recipeSortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", column, dir, dir)
}

func recipeWhereClause(filter model.RecipeFilter) (string, []any) {
	if filter.PublisherID == "" {
		return "", nil
	}
	return "WHERE publisher_id = $1", []any{filter.PublisherID}
}

func (db *Postgres) CountRecipes(ctx context.Context, filter model.RecipeFilter) (int64, error) {
	where, args := recipeWhereClause(filter)
	query := `SELECT COUNT(*) FROM recipes ` + where

	var total int64
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (db *Postgres) ListRecipes(ctx context.Context, filter model.RecipeFilter, q model.ListQuery) ([]model.Recipe, error) {
	where, args := recipeWhereClause(filter)
	query := fmt.Sprintf(`
		SELECT %s
		FROM recipes
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, recipeColumns, where, recipeOrderClause(q), len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Skip)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.Recipe, 0, q.Limit)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (db *Postgres) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE id = $1
	`
	r, err := scanRecipe(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (db *Postgres) CreateRecipe(ctx context.Context, r *model.Recipe) error {
	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.Pool.Exec(ctx, query,
		r.ID,
		r.Title,
		r.Instructions,
		r.Ingredients,
		r.Nutrition,
		r.ImageURL,
		r.ImagePublicID,
		r.PublisherID,
		r.CreatedAt,
		r.UpdatedAt,
	)
	return err
}

func (db *Postgres) UpdateRecipe(ctx context.Context, r *model.Recipe) error {
	query := `
		UPDATE recipes
		SET
			title = $2,
			instructions = $3,
			ingredients = $4,
			nutrition = $5,
			image_url = $6,
			image_public_id = $7,
			updated_at = $8
		WHERE id = $1
	`
	commandTag, err := db.Pool.Exec(ctx, query,
		r.ID,
		r.Title,
		r.Instructions,
		r.Ingredients,
		r.Nutrition,
		r.ImageURL,
		r.ImagePublicID,
		r.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Postgres) DeleteRecipe(ctx context.Context, id string) error {
	commandTag, err := db.Pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var r model.Recipe
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Instructions,
		&r.Ingredients,
		&r.Nutrition,
		&r.ImageURL,
		&r.ImagePublicID,
		&r.PublisherID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
