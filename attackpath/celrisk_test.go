package attackpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysentinel/engine/graph"
)

func TestCELStepRiskByType(t *testing.T) {
	strategy, err := NewCELStepRisk(map[string]string{
		"can-access": `properties["crosses_trust_boundary"] == true ? 3.0 : 1.0`,
	}, "", 1.0)
	require.NoError(t, err)

	boundary := graph.NewRelationship(testTenant, "a", "b", "can-access").
		WithProperty("crosses_trust_boundary", true)
	assert.Equal(t, 3.0, strategy.Weight(*boundary))

	internal := graph.NewRelationship(testTenant, "a", "b", "can-access").
		WithProperty("crosses_trust_boundary", false)
	assert.Equal(t, 1.0, strategy.Weight(*internal))

	// Type without an expression falls back.
	other := graph.NewRelationship(testTenant, "a", "b", "peers-with")
	assert.Equal(t, 1.0, strategy.Weight(*other))
}

func TestCELStepRiskDefaultExpression(t *testing.T) {
	strategy, err := NewCELStepRisk(nil, `type == "assumes-role" ? 2.0 : 0.5`, 1.0)
	require.NoError(t, err)

	role := graph.NewRelationship(testTenant, "a", "b", "assumes-role")
	assert.Equal(t, 2.0, strategy.Weight(*role))

	other := graph.NewRelationship(testTenant, "a", "b", "connects-to")
	assert.Equal(t, 0.5, strategy.Weight(*other))
}

func TestCELStepRiskInvalidExpressionRejected(t *testing.T) {
	_, err := NewCELStepRisk(map[string]string{"can-access": "not a (valid expr"}, "", 1.0)
	assert.Error(t, err)
}

func TestCELStepRiskEvalFailureFallsBack(t *testing.T) {
	// Indexing a missing key errors at evaluation time.
	strategy, err := NewCELStepRisk(map[string]string{
		"can-access": `double(properties["missing"])`,
	}, "", 7.0)
	require.NoError(t, err)

	rel := graph.NewRelationship(testTenant, "a", "b", "can-access")
	assert.Equal(t, 7.0, strategy.Weight(*rel))
}

func TestCELStepRiskIntegerResult(t *testing.T) {
	strategy, err := NewCELStepRisk(nil, "2", 1.0)
	require.NoError(t, err)

	rel := graph.NewRelationship(testTenant, "a", "b", "connects-to")
	assert.Equal(t, 2.0, strategy.Weight(*rel))
}
