package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/channah-state/internal/domain/repository"
	"github.com/jhoicas/channah-state/pkg/config"
)

var _ repository.StateRepository = (*StateRepository)(nil)

const collectionName = "client_state"

// NewClient conecta a MongoDB y hace ping al primario.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, nil
}

// stateDoc documento por clave; value guarda el JSON tal cual como string.
type stateDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// StateRepository adaptador del puerto StateRepository sobre una colección MongoDB.
type StateRepository struct {
	coll *mongo.Collection
}

// NewStateRepository construye el adaptador sobre la base dbName.
func NewStateRepository(client *mongo.Client, dbName string) *StateRepository {
	return &StateRepository{coll: client.Database(dbName).Collection(collectionName)}
}

// Load devuelve el blob o (nil, nil) si no hay documento.
func (r *StateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var doc stateDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo: find %s: %w", key, err)
	}
	return []byte(doc.Value), nil
}

// Save reemplaza el documento completo (upsert).
func (r *StateRepository) Save(ctx context.Context, key string, value []byte) error {
	doc := stateDoc{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: replace %s: %w", key, err)
	}
	return nil
}

// Delete elimina el documento de la clave.
func (r *StateRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo: delete %s: %w", key, err)
	}
	return nil
}
