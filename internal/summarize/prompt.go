// Package summarize writes short endpoint summaries with a language model.
package summarize

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
)

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"json": toJSON,
}).Parse(`You document a REST API. Write a one sentence summary (at most 12 words,
no trailing period) of what this endpoint does. Reply with the sentence only.

Endpoint: {{.Method}} {{.Path}}
Handler: {{.Controller}}.{{.FunctionName}}
{{- if .Description}}
Notes: {{.Description}}
{{- end}}
{{- range .Parameters}}
Parameter {{.Name}} ({{.In}}{{if .Required}}, required{{end}}): {{.TypeText}}
{{- end}}
{{- if .RequestSchema}}
Request schema:
{{json .RequestSchema}}
{{- end}}
{{- if .ResponseSchema}}
Response schema:
{{json .ResponseSchema}}
{{- end}}
{{- if .Examples.Response}}
Example response:
{{json .Examples.Response}}
{{- end}}
`))

// BuildPrompt renders the summarization prompt for one route.
func BuildPrompt(route *routedomain.Route) (string, error) {
	if route == nil {
		return "", fmt.Errorf("route is nil")
	}
	var b strings.Builder
	if err := promptTemplate.Execute(&b, route); err != nil {
		return "", fmt.Errorf("failed to render prompt for %s %s: %w", route.Method, route.Path, err)
	}
	return b.String(), nil
}

func toJSON(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
