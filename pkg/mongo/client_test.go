package mongo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/pkg/mongo"
)

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	client, err := mongo.New(context.Background(), mongo.Config{})
	require.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)
	assert.Nil(t, client)

	db, err := mongo.NewWithDatabase(context.Background(), mongo.Config{Database: "platform"})
	require.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)
	assert.Nil(t, db)
}
