package config

import (
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	schemaJSON, err := JSONSchema()
	require.NoError(t, err)
	assert.NotNil(t, schemaJSON)

	unmarshalledSchema := &jsonschema.Schema{}
	err = unmarshalledSchema.UnmarshalJSON(schemaJSON)
	assert.NoError(t, err)

	assert.Contains(t, string(schemaJSON), "allowed_origins")
	assert.NotContains(t, string(schemaJSON), "openai_api_key")
}
