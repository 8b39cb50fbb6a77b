package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_PreviewData(t *testing.T) {
	for name, data := range PreviewData {
		t.Run(string(name), func(t *testing.T) {
			html, err := Render(name, data)
			require.NoError(t, err)

			for _, value := range data {
				assert.Contains(t, html, value)
			}
		})
	}
}

func TestRender_EscapesInput(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]string{"UserName": "<script>alert(1)</script>"})

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render(Template("missing"), nil)

	assert.Error(t, err)
}
