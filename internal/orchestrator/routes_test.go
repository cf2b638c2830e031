package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/state"
	"github.com/cuemby/dynia/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadComposeFileWrapsMissingFileAsIOFailure(t *testing.T) {
	_, err := readComposeFile("/nonexistent/compose.yaml")
	var ioErr *dynerr.IOFailure
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "read", ioErr.Op)
	assert.Equal(t, "/nonexistent/compose.yaml", ioErr.Path)
}

func TestReadComposeFileReturnsContentsOnSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compose.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: {}"), 0o644))

	data, err := readComposeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "services: {}", string(data))
}

func TestResolveRoutesReturnsEmptyForClusterWithNoRoutes(t *testing.T) {
	store, err := state.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	o := &Orchestrator{Store: store}
	backends, err := o.resolveRoutes("edge-one")
	require.NoError(t, err)
	assert.Empty(t, backends)
}

func TestResolveRoutesResolvesPlaceholderRouteToStaticBackend(t *testing.T) {
	store, err := state.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	store.UpsertRoute(&types.Route{ClusterName: "edge-one", Host: "dynia-placeholder-edge-one.example.com", IsPlaceholder: true})

	o := &Orchestrator{Store: store}
	backends, err := o.resolveRoutes("edge-one")
	require.NoError(t, err)
	require.Len(t, backends, 1)
	assert.Equal(t, "placeholder:8080", backends[0].Backend)
}

func TestResolveRoutesPropagatesComposeResolutionFailure(t *testing.T) {
	store, err := state.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	store.UpsertRoute(&types.Route{ClusterName: "edge-one", Host: "app.example.com", ComposePath: "/nonexistent/compose.yaml"})

	o := &Orchestrator{Store: store}
	_, err = o.resolveRoutes("edge-one")
	assert.Error(t, err)
}
