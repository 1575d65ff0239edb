package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/insightdesk/access-directory/internal/core/domain"
)

const collectionClients = "clients"

// ClientRepository implements ports.ClientRepository on a MongoDB collection.
// The record id (email local-part) is the document _id, so upsert semantics
// come straight from ReplaceOne with upsert enabled.
type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients)}
}

// Get retrieves one record by id.
func (r *ClientRepository) Get(ctx context.Context, id string) (*domain.ClientRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var record domain.ClientRecord
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("%w: get client: %v", domain.ErrStore, err)
	}
	return &record, nil
}

// List returns every record sorted by access_granted_at descending, then
// email ascending. The sort happens in the query, not in memory.
func (r *ClientRepository) List(ctx context.Context) ([]*domain.ClientRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sort := bson.D{
		{Key: "access_granted_at", Value: -1},
		{Key: "email", Value: 1},
	}
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("%w: list clients: %v", domain.ErrStore, err)
	}
	defer cursor.Close(ctx)

	var records []*domain.ClientRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%w: decode clients: %v", domain.ErrStore, err)
	}
	return records, nil
}

// Upsert inserts the record or fully replaces the document with the same id.
func (r *ClientRepository) Upsert(ctx context.Context, record *domain.ClientRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: upsert client: %v", domain.ErrStore, err)
	}
	return nil
}

// Delete hard-deletes the record. Deleting an absent id reports
// domain.ErrClientNotFound.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: delete client: %v", domain.ErrStore, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// EnsureIndexes creates the secondary indexes the list query relies on.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "access_granted_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
