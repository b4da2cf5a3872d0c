package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	schemaFiles, err := filepath.Glob("*.schema.json")
	require.NoError(t, err)
	require.NotEmpty(t, schemaFiles)

	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(schemaFile)
			require.NoError(t, err, "should be able to read schema file")

			var v map[string]any
			err = json.Unmarshal(data, &v)
			require.NoError(t, err, "schema file should be valid JSON: %s", schemaFile)
			assert.Contains(t, v, "$schema")
		})
	}
}

func TestContactsEmbedded(t *testing.T) {
	data, err := os.ReadFile("contacts.schema.json")
	require.NoError(t, err)
	assert.Equal(t, string(data), Contacts)
}
