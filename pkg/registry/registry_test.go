// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "1.0.0",
		"activities": [
			{"id": "generate-content", "taskType": "generate-content", "category": "content"},
			{"id": "credit-topup", "taskType": "credit-topup", "category": "credits"}
		]
	}`), 0o644))

	reg, err := LoadRegistry(path)

	assert.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)
	assert.Equal(t, []string{"generate-content", "credit-topup"}, reg.TaskTypes())

	activity, ok := reg.FindByTaskType("credit-topup")
	assert.True(t, ok)
	assert.Equal(t, "credits", activity.Category)

	_, ok = reg.FindByTaskType("unknown")
	assert.False(t, ok)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry("does-not-exist.json")
	assert.Error(t, err)
}
