package mapping_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/mapping"
)

func mustProperties(t *testing.T, src string) mapping.Properties {
	t.Helper()

	var props mapping.Properties
	require.NoError(t, yaml.Unmarshal([]byte(src), &props))
	return props
}

func mustAliases(t *testing.T, src string) mapping.Aliases {
	t.Helper()

	var aliases mapping.Aliases
	require.NoError(t, yaml.Unmarshal([]byte(src), &aliases))
	return aliases
}

func mustDoc(t *testing.T, src string) *document.Map {
	t.Helper()

	m, err := document.ParseMap([]byte(src))
	require.NoError(t, err)
	return m
}

func encode(t *testing.T, n document.Node) string {
	t.Helper()

	b, err := json.Marshal(n)
	require.NoError(t, err)
	return string(b)
}

func yamlUnmarshal(src string, out any) error {
	return yaml.Unmarshal([]byte(src), out)
}
