package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetSchemasAreValid(t *testing.T) {
	for _, schema := range []SkeletonSchema{QueenBeeSchema(), OtherBeeSchema(), BeePairSchema()} {
		require.NoError(t, schema.Validate(), schema.Name)
	}
}

func TestBeePairSchemaCombinesBothIndividuals(t *testing.T) {
	schema := BeePairSchema()

	assert.Len(t, schema.Bodyparts, 18)
	assert.Len(t, schema.Edges, 16)
	assert.True(t, schema.Has("Q_Head"))
	assert.True(t, schema.Has("O_Antenna_R3"))
	assert.Equal(t, 36, schema.ColumnCount())
}

func TestValidateRejectsUnknownEdgeEndpoint(t *testing.T) {
	schema := SkeletonSchema{
		Name:      "broken",
		Bodyparts: []string{"head", "thorax"},
		Edges:     [][2]string{{"head", "stinger"}},
	}

	err := schema.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stinger")
}

func TestValidateRejectsDuplicateBodyparts(t *testing.T) {
	schema := SkeletonSchema{Name: "dup", Bodyparts: []string{"head", "head"}}

	require.Error(t, schema.Validate())
}

func TestSchemaByName(t *testing.T) {
	schema, err := SchemaByName("queen-bee")
	require.NoError(t, err)
	assert.Equal(t, "queen-bee", schema.Name)

	// empty name means the default preset
	schema, err = SchemaByName("")
	require.NoError(t, err)
	assert.Equal(t, "bee-pair", schema.Name)

	_, err = SchemaByName("wasp")
	require.Error(t, err)
}

func TestCustomSchemaCopiesInput(t *testing.T) {
	parts := []string{"head", "thorax", "abdomen"}
	schema := CustomSchema(parts)
	parts[0] = "mutated"

	assert.Equal(t, "head", schema.Bodyparts[0])
	require.NoError(t, schema.Validate())
}
