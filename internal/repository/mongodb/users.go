package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDocument) model() models.AdminUser {
	return models.AdminUser{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

type userStore struct {
	coll *mongo.Collection
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return models.AdminUser{}, notFoundOr(err, "User", username, "find user")
	}
	return doc.model(), nil
}

func (s *userStore) FindAdmin(ctx context.Context) (models.AdminUser, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	var doc userDocument
	if err := s.coll.FindOne(ctx, bson.M{"role": models.RoleAdmin}, opts).Decode(&doc); err != nil {
		return models.AdminUser{}, notFoundOr(err, "User", models.RoleAdmin, "find admin")
	}
	return doc.model(), nil
}

func (s *userStore) Create(ctx context.Context, user models.AdminUser) (models.AdminUser, error) {
	_, err := s.FindByUsername(ctx, user.Username)
	if err == nil {
		return models.AdminUser{}, &models.ConflictError{Message: "Username already exists"}
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.AdminUser{}, err
	}

	doc := userDocument{
		Username:  user.Username,
		Password:  user.PasswordHash,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return models.AdminUser{}, &models.ConflictError{Message: "Username already exists"}
	}
	if err != nil {
		return models.AdminUser{}, models.NewStorageError("insert user", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.model(), nil
}

func (s *userStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	oid, err := objectID("User", id)
	if err != nil {
		return err
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"password": passwordHash}})
	if err != nil {
		return models.NewStorageError("update password", err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
