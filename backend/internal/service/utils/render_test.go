package utils

import (
	"testing"

	"github.com/orangery/ams/shared/domain"
	"github.com/orangery/ams/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ada = domain.Celebrant{UserId: 7, Username: "ada", FirstName: "Ada", LastName: "Obi", PhoneNumber: "+2348000000000", Label: "graduation"}

func TestRenderDefaults(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	tests := []struct {
		eventType domain.EventType
		want      string
	}{
		{domain.EventBirthday, "Happy Birthday, Ada! 🎉"},
		{domain.EventAnniversary, "Happy Anniversary, Ada! 🎉"},
		{domain.EventOthers, "Happy graduation, Ada! 🎉"},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			got, err := r.Render(tt.eventType, ada)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = r.Render("holiday", ada)
	var e *errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 400, e.StatusCode)
}

func TestRenderOverrides(t *testing.T) {
	r, err := NewRenderer(map[string]string{"birthday": "Cheers {{.FirstName}} {{.LastName}}!", "others": "  "})
	require.NoError(t, err)

	got, err := r.Render(domain.EventBirthday, ada)
	require.NoError(t, err)
	assert.Equal(t, "Cheers Ada Obi!", got)

	got, err = r.Render(domain.EventOthers, ada)
	require.NoError(t, err)
	assert.Equal(t, "Happy graduation, Ada! 🎉", got, "blank override keeps the default")

	_, err = NewRenderer(map[string]string{"holiday": "x"})
	assert.Error(t, err, "unknown event type key")

	_, err = NewRenderer(map[string]string{"birthday": "{{.FirstName"})
	assert.Error(t, err, "unparsable template")
}

func TestRenderCustom(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	got, err := r.RenderCustom("<b>Hi</b> {{.FirstName}}, don't miss <script>alert(1)</script>the party", ada)
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada, don't miss the party", got)

	_, err = r.RenderCustom("Hi {{.Nickname}}", ada)
	var e *errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 400, e.StatusCode)

	_, err = r.RenderCustom("Hi {{", ada)
	require.ErrorAs(t, err, &e)

	t.Run("only plain fields", func(t *testing.T) {
		for _, body := range []string{
			"{{range 1000000000}}spam{{end}}",
			"{{with .FirstName}}{{.}}{{end}}",
			"{{if .FirstName}}hi{{end}}",
			`{{printf "%0999999d" 1}}`,
			"{{.FirstName | len}}",
			"{{$x := .FirstName}}{{$x}}",
			`{{define "x"}}a{{end}}{{template "x"}}`,
			"{{.}}",
		} {
			_, err := r.RenderCustom(body, ada)
			var e *errors.ErrorWithStatusCode
			require.ErrorAs(t, err, &e, body)
			assert.Equal(t, "Message has invalid placeholders", e.Message, body)
		}

		got, err := r.RenderCustom("{{- .FirstName }} {{.LastName -}} !", ada)
		require.NoError(t, err)
		assert.Equal(t, "Ada Obi!", got)
	})
}

func TestHTML(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	assert.Equal(t, "<p>Happy <strong>Birthday</strong>, Ada!</p>", r.HTML("Happy **Birthday**, Ada!"))

	out := r.HTML("hi <img src=x onerror=alert(1)> [x](javascript:alert(1))")
	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "javascript:")
}
