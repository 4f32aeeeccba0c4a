package repository

import (
	"context"
	"errors"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(client *mongo.Client, dbName string) *UserRepo {
	return &UserRepo{coll: client.Database(dbName).Collection("users")}
}

// AddUser inserts a new user. A unique index on email turns concurrent
// duplicate registrations into ErrDuplicate.
func (r *UserRepo) AddUser(ctx context.Context, user *model.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
