package repository

import (
	"context"
	"errors"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotesRepo struct {
	coll *mongo.Collection
}

func NewNotesRepo(client *mongo.Client, dbName string) *NotesRepo {
	return &NotesRepo{coll: client.Database(dbName).Collection("notes")}
}

func (r *NotesRepo) Create(ctx context.Context, note *model.Note) error {
	_, err := r.coll.InsertOne(ctx, note)
	return err
}

// ListByUser returns the user's notes, most recently created first.
func (r *NotesRepo) ListByUser(ctx context.Context, userID string) ([]*model.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notes := []*model.Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Get looks a note up by id and owner. A note owned by someone else is
// indistinguishable from a missing one.
func (r *NotesRepo) Get(ctx context.Context, noteID, userID string) (*model.Note, error) {
	var note model.Note
	err := r.coll.FindOne(ctx, bson.M{"_id": noteID, "user_id": userID}).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// Update replaces the mutable fields of an owned note.
func (r *NotesRepo) Update(ctx context.Context, note *model.Note) error {
	filter := bson.M{"_id": note.ID, "user_id": note.UserID}
	update := bson.M{"$set": bson.M{
		"title":       note.Title,
		"description": note.Description,
		"image_url":   note.ImageURL,
		"updated_at":  note.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotesRepo) Delete(ctx context.Context, noteID, userID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": noteID, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
