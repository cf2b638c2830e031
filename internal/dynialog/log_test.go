package dynialog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONOutputWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	Logger.Info().Str("cluster", "edge-one").Msg("provisioning started")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "provisioning started", line["message"])
	assert.Equal(t, "edge-one", line["cluster"])
}

func TestInitRespectsGlobalLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: ErrorLevel, JSONOutput: true, Output: &buf})

	Logger.Info().Msg("should be suppressed")
	assert.Empty(t, buf.String())

	Logger.Error().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")

	// restore a permissive level so later tests in the package aren't
	// affected by this test's global level change
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestWithComponentAddsComponentField(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	WithComponent("orchestrator").Info().Msg("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "orchestrator", line["component"])
}

func TestWithClusterAndWithNodeAddScopedFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	WithCluster("edge-one").Info().Msg("cluster scoped")
	var clusterLine map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &clusterLine))
	assert.Equal(t, "edge-one", clusterLine["cluster"])

	buf.Reset()
	WithNode("calm-otter").Info().Msg("node scoped")
	var nodeLine map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &nodeLine))
	assert.Equal(t, "calm-otter", nodeLine["node"])
}
