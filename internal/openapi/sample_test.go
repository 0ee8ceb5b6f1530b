package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriax/autobackend.ai-backend/internal/openapi"
)

// The sample document must always be a valid /generate input.
func TestSampleValidatesUnchanged(t *testing.T) {
	doc, iss := openapi.Validate(openapi.Sample())
	require.Empty(t, iss)
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "Task Manager API", doc.Info.Title)
	assert.NotEmpty(t, doc.Info.Version)
	assert.NotEmpty(t, doc.Paths)
	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.Schemas, "Task")
}

// The sample must survive a JSON round trip the way a client would send it
// back.
func TestSampleSurvivesRoundTrip(t *testing.T) {
	b, err := json.Marshal(openapi.Sample())
	require.NoError(t, err)

	var raw any
	require.NoError(t, json.Unmarshal(b, &raw))

	_, iss := openapi.Validate(raw)
	assert.Empty(t, iss)
}

func TestSampleReturnsFreshValue(t *testing.T) {
	a := openapi.Sample()
	a["openapi"] = "2.0"

	_, iss := openapi.Validate(openapi.Sample())
	assert.Empty(t, iss)
}
