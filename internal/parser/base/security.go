package base

import (
	"github.com/go-openapi/spec"

	"github.com/griffnb/nest-swag/internal/domain"
	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
)

// Security scheme kinds.
const (
	KindBasic  = "basic"
	KindBearer = "bearer"
	KindCookie = "cookie"
	KindAPIKey = "apiKey"
	KindOAuth2 = "oauth2"
)

// securityAnnotations maps auth annotations to the scheme kind and default
// scheme name they imply.
var securityAnnotations = map[string]struct{ kind, name string }{
	"ApiBasicAuth":  {KindBasic, "basic"},
	"ApiBearerAuth": {KindBearer, "bearer"},
	"ApiCookieAuth": {KindCookie, "cookie"},
	"ApiOAuth2":     {KindOAuth2, "oauth2"},
	"ApiSecurity":   {"", ""},
}

// SecurityFromAnnotations returns the security requirements of the auth
// annotations, in order. A scheme named twice keeps its first requirement.
func SecurityFromAnnotations(annotations []domain.Annotation) []routedomain.Security {
	var out []routedomain.Security
	seen := make(map[string]struct{})
	for _, ann := range annotations {
		def, ok := securityAnnotations[ann.Name]
		if !ok {
			continue
		}

		sec := routedomain.Security{Kind: def.kind, Scheme: def.name}
		switch ann.Name {
		case "ApiSecurity":
			sec.Scheme = arg(ann, 0)
			sec.Scopes = listLiteral(arg(ann, 1))
		case "ApiOAuth2":
			sec.Scopes = listLiteral(arg(ann, 0))
			if name := arg(ann, 1); name != "" {
				sec.Scheme = name
			}
		default:
			if name := arg(ann, 0); name != "" {
				sec.Scheme = name
			}
		}
		if sec.Scheme == "" {
			continue
		}
		if _, dup := seen[sec.Scheme]; dup {
			continue
		}
		seen[sec.Scheme] = struct{}{}
		out = append(out, sec)
	}
	return out
}

// RegisterSecurity adds a definition for every scheme the requirements use
// that the document does not define yet.
func (s *Service) RegisterSecurity(requirements []routedomain.Security) {
	for _, req := range requirements {
		if _, ok := s.swagger.SecurityDefinitions[req.Scheme]; ok {
			continue
		}
		scheme := defaultScheme(req.Kind, "")
		if scheme == nil {
			s.debug.Printf("warning: security scheme %s is used but never defined", req.Scheme)
			continue
		}
		for _, scope := range req.Scopes {
			if req.Kind == KindOAuth2 {
				scheme.AddScope(scope, "")
			}
		}
		s.swagger.SecurityDefinitions[req.Scheme] = scheme
	}
}

// addSecurityDefinition handles the add*Auth builder calls.
func (s *Service) addSecurityDefinition(call domain.Annotation) error {
	var kind, name, options string
	switch call.Name {
	case "addBearerAuth":
		kind, name, options = KindBearer, "bearer", arg(call, 0)
		setIfNotEmpty(&name, arg(call, 1))
	case "addBasicAuth":
		kind, name, options = KindBasic, "basic", arg(call, 0)
		setIfNotEmpty(&name, arg(call, 1))
	case "addApiKey":
		kind, name, options = KindAPIKey, "api_key", arg(call, 0)
		setIfNotEmpty(&name, arg(call, 1))
	case "addOAuth2":
		kind, name, options = KindOAuth2, "oauth2", arg(call, 0)
		setIfNotEmpty(&name, arg(call, 1))
	case "addCookieAuth":
		kind, name, options = KindCookie, "cookie", arg(call, 1)
		setIfNotEmpty(&name, arg(call, 2))
		if cookie := arg(call, 0); cookie != "" {
			options = "{ name: '" + cookie + "' }"
		}
	default:
		return nil
	}

	scheme := defaultScheme(kind, options)
	if description := objectProperty(options, "description"); description != "" {
		scheme.Description = description
	}
	s.swagger.SecurityDefinitions[name] = scheme
	return nil
}

// defaultScheme builds the Swagger 2.0 scheme for a kind. Bearer and cookie
// auth have no Swagger 2.0 type and become API keys in a header. options is
// the source text of the builder options object, if any.
func defaultScheme(kind, options string) *spec.SecurityScheme {
	switch kind {
	case KindBasic:
		return spec.BasicAuth()
	case KindBearer:
		scheme := spec.APIKeyAuth("Authorization", "header")
		scheme.Description = "Bearer token"
		if format := objectProperty(options, "bearerFormat"); format != "" {
			scheme.Description = format + " bearer token"
		}
		return scheme
	case KindCookie:
		scheme := spec.APIKeyAuth("Cookie", "header")
		cookie := objectProperty(options, "name")
		if cookie == "" {
			cookie = "connect.sid"
		}
		scheme.Description = "Session cookie " + cookie
		return scheme
	case KindAPIKey:
		name := objectProperty(options, "name")
		if name == "" {
			name = "api_key"
		}
		in := objectProperty(options, "in")
		if in != "query" {
			in = "header"
		}
		return spec.APIKeyAuth(name, in)
	case KindOAuth2:
		return spec.OAuth2Implicit(objectProperty(options, "authorizationUrl"))
	}
	return nil
}
