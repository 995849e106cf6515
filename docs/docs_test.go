package docs

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocRendersRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger string                    `json:"swagger"`
		Info    map[string]any            `json:"info"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, sonic.UnmarshalString(raw, &doc))

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, SwaggerInfo.Title, doc.Info["title"])
	assert.Contains(t, doc.Paths["/api/chat"], "post")
	assert.Contains(t, doc.Paths["/healthz"], "get")
}
