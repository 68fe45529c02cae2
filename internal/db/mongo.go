package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/recipehub/backend/internal/config"
	"github.com/recipehub/backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo stores accounts and recipes as documents in two collections.
type Mongo struct {
	client  *mongo.Client
	users   *mongo.Collection
	recipes *mongo.Collection
}

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

var recipeSortFields = map[string]string{
	model.SortByCreatedAt:    "createdAt",
	model.SortByUpdatedAt:    "updatedAt",
	model.SortByTitle:        "title",
	model.SortByInstructions: "instructions",
}

// OpenMongo connects, pings and creates the unique indexes the account
// invariants rely on.
func OpenMongo(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	database := client.Database(cfg.Database)
	m := &Mongo{
		client:  client,
		users:   database.Collection("users"),
		recipes: database.Collection("recipes"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	_, err = m.recipes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "publisherId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create recipe indexes: %w", err)
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) CreateUser(ctx context.Context, user *model.User) error {
	_, err := m.users.InsertOne(ctx, userDocument{
		ID:           user.ID,
		Name:         user.Name,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *Mongo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.findUser(ctx, bson.D{{Key: "username", Value: username}})
}

func (m *Mongo) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	return m.findUser(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "email", Value: email}},
	}}})
}

func (m *Mongo) findUser(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDocument
	if err := m.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func recipeFilterDocument(filter model.RecipeFilter) bson.D {
	if filter.PublisherID == "" {
		return bson.D{}
	}
	return bson.D{{Key: "publisherId", Value: filter.PublisherID}}
}

// recipeSortDocument mirrors recipeOrderClause: whitelisted field, then _id
// in the same direction.
func recipeSortDocument(q model.ListQuery) bson.D {
	field, ok := recipeSortFields[q.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := 1
	if q.Desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func (m *Mongo) CountRecipes(ctx context.Context, filter model.RecipeFilter) (int64, error) {
	return m.recipes.CountDocuments(ctx, recipeFilterDocument(filter))
}

func (m *Mongo) ListRecipes(ctx context.Context, filter model.RecipeFilter, q model.ListQuery) ([]model.Recipe, error) {
	opts := options.Find().
		SetSort(recipeSortDocument(q)).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))

	cursor, err := m.recipes.Find(ctx, recipeFilterDocument(filter), opts)
	if err != nil {
		return nil, err
	}

	list := make([]model.Recipe, 0, q.Limit)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (m *Mongo) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var r model.Recipe
	if err := m.recipes.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (m *Mongo) CreateRecipe(ctx context.Context, r *model.Recipe) error {
	_, err := m.recipes.InsertOne(ctx, r)
	return err
}

func (m *Mongo) UpdateRecipe(ctx context.Context, r *model.Recipe) error {
	res, err := m.recipes.ReplaceOne(ctx, bson.D{{Key: "_id", Value: r.ID}}, r)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteRecipe(ctx context.Context, id string) error {
	res, err := m.recipes.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
