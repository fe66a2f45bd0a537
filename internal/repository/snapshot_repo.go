package repository

import (
	"context"

	"github.com/Maxim12412/Monopolista/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SnapshotRepo is the persistence bridge: a best-effort write-through cache
// of room snapshots keyed by room code. Reads happen only on a store miss to
// recover after a process restart; writes are asynchronous and their failure
// is swallowed by the caller.
type SnapshotRepo interface {
	Save(ctx context.Context, room *model.Room) error
	Load(ctx context.Context, code string) (*model.Room, error)
	Delete(ctx context.Context, code string) error
}

type snapshotRepo struct {
	collection *mongo.Collection
}

func NewSnapshotRepo(db *mongo.Database) SnapshotRepo {
	return &snapshotRepo{collection: db.Collection("rooms")}
}

func (r *snapshotRepo) Save(ctx context.Context, room *model.Room) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"code": room.Code}, room, opts)
	return err
}

func (r *snapshotRepo) Load(ctx context.Context, code string) (*model.Room, error) {
	var room model.Room
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *snapshotRepo) Delete(ctx context.Context, code string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	return err
}
