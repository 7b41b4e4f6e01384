package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
	"github.com/griffnb/nest-swag/internal/schema"
)

type fakeSummarizer struct {
	replies map[string]string
	prompts []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	for key, reply := range f.replies {
		if strings.Contains(prompt, key) {
			return reply, nil
		}
	}
	return "", errors.New("no reply")
}

func TestBuildPrompt(t *testing.T) {
	route := &routedomain.Route{
		Method:       "GET",
		Path:         "/users/{id}",
		Controller:   "UsersController",
		FunctionName: "findOne",
		Parameters:   []routedomain.Parameter{{Name: "id", In: "path", Required: true, TypeText: "string"}},
		ResponseSchema: &schema.JSONSchema{
			Type:     schema.OBJECT,
			Required: []string{"id"},
		},
		Examples: schema.ExamplePair{Response: map[string]interface{}{"id": "string"}},
	}

	prompt, err := BuildPrompt(route)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Endpoint: GET /users/{id}")
	assert.Contains(t, prompt, "Handler: UsersController.findOne")
	assert.Contains(t, prompt, "Parameter id (path, required): string")
	assert.Contains(t, prompt, `"required": [`)
	assert.Contains(t, prompt, "Example response:")
	assert.NotContains(t, prompt, "Request schema:")

	_, err = BuildPrompt(nil)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	t.Run("should fill empty summaries and skip failures", func(t *testing.T) {
		routes := []*routedomain.Route{
			{Method: "GET", Path: "/a"},
			{Method: "GET", Path: "/b", Summary: "Already set"},
			{Method: "GET", Path: "/c"},
		}
		fake := &fakeSummarizer{replies: map[string]string{"/a": "\"Lists all a.\"\nextra"}}

		filled := Apply(context.Background(), fake, routes, nil)

		assert.Equal(t, 1, filled)
		assert.Equal(t, "Lists all a", routes[0].Summary)
		assert.Equal(t, "Already set", routes[1].Summary)
		assert.Empty(t, routes[2].Summary)
		assert.Len(t, fake.prompts, 2)
	})

	t.Run("should do nothing without a summarizer", func(t *testing.T) {
		assert.Equal(t, 0, Apply(context.Background(), nil, []*routedomain.Route{{}}, nil))
	})

	t.Run("should stop when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fake := &fakeSummarizer{}
		assert.Equal(t, 0, Apply(ctx, fake, []*routedomain.Route{{Path: "/a"}}, nil))
		assert.Empty(t, fake.prompts)
	})
}
