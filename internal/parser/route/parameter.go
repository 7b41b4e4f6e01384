package route

import (
	"strings"

	"github.com/griffnb/nest-swag/internal/domain"
	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
	"github.com/griffnb/nest-swag/internal/resolver"
)

// parameters builds the handler parameters. Unannotated parameters and
// parameters with an unrecognized annotation read from the body.
func (s *Service) parameters(method domain.Method, scope, rawPath string) []routedomain.Parameter {
	var params []routedomain.Parameter
	for _, p := range method.Parameters {
		loc, arg := parameterLocation(p)
		name := arg
		if name == "" {
			name = p.Name
		}

		typeText := p.TypeText
		if typeText == "" {
			typeText = resolver.PrimitiveAny
		}
		t := s.typeResolver.Resolve(typeText, scope)

		param := routedomain.Parameter{
			Name:     name,
			In:       string(loc),
			TypeText: p.TypeText,
			Required: !p.Optional,
			Schema:   s.generator.Generate(t),
			Type:     t,
		}
		if loc == LocationPath {
			param.Required = true
		}
		params = append(params, param)
	}

	return s.appendMissingPathParams(params, rawPath)
}

// parameterLocation returns the location of the first annotation that has
// one, and that annotation's first argument.
func parameterLocation(p domain.Parameter) (Location, string) {
	for _, ann := range p.Annotations {
		if _, known := locationAnnotations[ann.Name]; known {
			return LocationFromAnnotation(ann.Name), pathArg(ann)
		}
	}
	if len(p.Annotations) > 0 {
		return LocationFromAnnotation(p.Annotations[0].Name), ""
	}
	return LocationFromAnnotation(""), ""
}

// appendMissingPathParams documents path parameters the handler does not
// bind explicitly, for example when @Param() takes the whole params object.
func (s *Service) appendMissingPathParams(params []routedomain.Parameter, rawPath string) []routedomain.Parameter {
	bound := make(map[string]struct{})
	for _, p := range params {
		if p.In == string(LocationPath) {
			bound[p.Name] = struct{}{}
		}
	}
	for _, name := range PathParams(rawPath) {
		if _, ok := bound[name]; ok {
			continue
		}
		t := resolver.Primitive(resolver.PrimitiveString)
		params = append(params, routedomain.Parameter{
			Name:     name,
			In:       string(LocationPath),
			TypeText: resolver.PrimitiveString,
			Required: true,
			Schema:   s.generator.Generate(t),
			Type:     t,
		})
	}
	return params
}

// UnwrapDeferred strips Promise<T> and Observable<T> wrappers from a return
// type reference.
func UnwrapDeferred(text string) string {
	text = strings.TrimSpace(text)
	for {
		inner, ok := unwrapOne(text)
		if !ok {
			return text
		}
		text = inner
	}
}

func unwrapOne(text string) (string, bool) {
	for _, wrapper := range []string{"Promise", "Observable"} {
		if !strings.HasPrefix(text, wrapper+"<") || !strings.HasSuffix(text, ">") {
			continue
		}
		body := text[len(wrapper)+1 : len(text)-1]
		depth := 0
		for _, r := range body {
			switch r {
			case '<':
				depth++
			case '>':
				depth--
			}
			if depth < 0 {
				return "", false
			}
		}
		if depth != 0 {
			return "", false
		}
		return strings.TrimSpace(body), true
	}
	return "", false
}

// responseType resolves the unwrapped return type. Handlers without a
// return annotation or returning void have no response body.
func (s *Service) responseType(method domain.Method, scope string) *resolver.Type {
	text := UnwrapDeferred(method.ReturnTypeText)
	if text == "" {
		return nil
	}
	t := s.typeResolver.Resolve(text, scope)
	if t.Kind == resolver.KindPrimitive && (t.Name == resolver.PrimitiveVoid || t.Name == resolver.PrimitiveUndefined) {
		return nil
	}
	return t
}
