package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogRenders(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	p, err := c.Render(Recommendations, SurveyInput{Location: "balcony", SunlightHours: 4.5, AvailableSpace: "small", Limit: 5})
	require.NoError(t, err)
	assert.Contains(t, p.User, "balcony")
	assert.Contains(t, p.User, "4.5 hours")
	assert.Contains(t, p.User, "up to 5 plants")
	assert.NotEmpty(t, p.System)

	p, err = c.Render(Custom, SurveyInput{Location: "garden", SunlightHours: 8, AvailableSpace: "large", PlantName: "Tomato"})
	require.NoError(t, err)
	assert.Contains(t, p.User, `"Tomato"`)
	assert.Contains(t, p.User, `"isValid": false`)

	p, err = c.Render(Diagnosis, DiagnosisInput{PlantName: "Basil", CompletedSteps: []string{"Sow seeds"}})
	require.NoError(t, err)
	assert.Contains(t, p.User, "- Sow seeds")
	assert.Contains(t, p.User, "needsTreatment")
}

func TestRender_UnknownPrompt(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	_, err = c.Render("haiku", nil)
	assert.Error(t, err)
}

func TestParse_RejectsIncompleteCatalog(t *testing.T) {
	_, err := Parse([]byte("prompts:\n  - name: recommendations\n    user: hi\n"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "custom"))

	_, err = Parse([]byte("prompts: []"))
	assert.Error(t, err)

	_, err = Parse([]byte("prompts:\n  - name: a\n    user: x\n  - name: a\n    user: y\n"))
	assert.Error(t, err)
}
