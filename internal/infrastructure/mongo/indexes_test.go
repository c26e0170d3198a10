package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAuditIndexModelsEnforceSameDayUniqueness(t *testing.T) {
	models := AuditIndexModels()
	require.NotEmpty(t, models)

	unique := models[0]
	keys, ok := unique.Keys.(bson.D)
	require.True(t, ok)
	require.Len(t, keys, 3)
	assert.Equal(t, "userId", keys[0].Key)
	assert.Equal(t, "storeId", keys[1].Key)
	assert.Equal(t, "auditDate", keys[2].Key)

	require.NotNil(t, unique.Options)
	require.NotNil(t, unique.Options.Unique)
	assert.True(t, *unique.Options.Unique)
}

func TestStoreIndexModelsEnforceUniqueCode(t *testing.T) {
	models := StoreIndexModels()
	require.NotEmpty(t, models)

	unique := models[0]
	keys, ok := unique.Keys.(bson.D)
	require.True(t, ok)
	require.Len(t, keys, 1)
	assert.Equal(t, "code", keys[0].Key)

	require.NotNil(t, unique.Options)
	require.NotNil(t, unique.Options.Unique)
	assert.True(t, *unique.Options.Unique)
}
