package mongo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/jhoicas/channah-state/internal/infrastructure/mongo"
)

const ns = "channah.client_state"

func TestMongoState_RoundTrip(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("guarda y lee el blob", func(mt *mtest.T) {
		repo := mongo.NewStateRepository(mt.Client, "channah")
		ctx := context.Background()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		require.NoError(t, repo.Save(ctx, "channah-cart", []byte(`{"items":[]}`)))

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "channah-cart"},
			{Key: "value", Value: `{"items":[]}`},
		}))
		got, err := repo.Load(ctx, "channah-cart")
		require.NoError(t, err)
		assert.JSONEq(t, `{"items":[]}`, string(got))
	})

	mt.Run("sin documento es nil", func(mt *mtest.T) {
		repo := mongo.NewStateRepository(mt.Client, "channah")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := repo.Load(context.Background(), "no-existe")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	mt.Run("error del servidor se envuelve", func(mt *mtest.T) {
		repo := mongo.NewStateRepository(mt.Client, "channah")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "sin permisos"}))

		err := repo.Delete(context.Background(), "channah-cart")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mongo: delete channah-cart")
	})
}
