package base

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-openapi/spec"

	"github.com/griffnb/nest-swag/internal/domain"
)

// BuilderMethods are the DocumentBuilder and application calls
// ApplyDocumentBuilder understands.
var BuilderMethods = []string{
	"setTitle", "setDescription", "setVersion", "setTermsOfService",
	"setContact", "setLicense", "setBasePath", "setGlobalPrefix", "addServer",
	"setExternalDoc", "addTag",
	"addBearerAuth", "addBasicAuth", "addCookieAuth", "addApiKey", "addOAuth2",
	"addSecurityRequirements",
}

// ApplyDocumentBuilder applies calls found in the application bootstrap
// file, in order.
func (s *Service) ApplyDocumentBuilder(calls []domain.Annotation) error {
	for _, call := range calls {
		if err := s.applyCall(call); err != nil {
			return fmt.Errorf("%s: %w", call.Name, err)
		}
	}
	return nil
}

func (s *Service) applyCall(call domain.Annotation) error {
	info := s.swagger.Info
	switch call.Name {
	case "setTitle":
		info.Title = arg(call, 0)
	case "setDescription":
		info.Description = arg(call, 0)
	case "setVersion":
		info.Version = arg(call, 0)
	case "setTermsOfService":
		info.TermsOfService = arg(call, 0)
	case "setContact":
		info.Contact = &spec.ContactInfo{ContactInfoProps: spec.ContactInfoProps{
			Name:  arg(call, 0),
			URL:   arg(call, 1),
			Email: arg(call, 2),
		}}
	case "setLicense":
		info.License = &spec.License{LicenseProps: spec.LicenseProps{
			Name: arg(call, 0),
			URL:  arg(call, 1),
		}}
	case "setBasePath", "setGlobalPrefix":
		if prefix := strings.Trim(arg(call, 0), "/"); prefix != "" {
			s.swagger.BasePath = "/" + prefix
		}
	case "addServer":
		return s.addServer(arg(call, 0))
	case "setExternalDoc":
		s.swagger.ExternalDocs = &spec.ExternalDocumentation{
			Description: arg(call, 0),
			URL:         arg(call, 1),
		}
	case "addTag":
		s.swagger.Tags = append(s.swagger.Tags, spec.Tag{TagProps: spec.TagProps{
			Name:        arg(call, 0),
			Description: arg(call, 1),
		}})
	case "addSecurityRequirements":
		name := arg(call, 0)
		if name == "" {
			return fmt.Errorf("security requirement needs a name")
		}
		s.swagger.Security = append(s.swagger.Security, map[string][]string{name: listLiteral(arg(call, 1))})
	default:
		return s.addSecurityDefinition(call)
	}
	return nil
}

// addServer splits a server URL into host, scheme and base path.
func (s *Service) addServer(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("server %q has no host", raw)
	}
	if s.swagger.Host == "" {
		s.swagger.Host = u.Host
	}
	if u.Scheme != "" && !contains(s.swagger.Schemes, u.Scheme) {
		s.swagger.Schemes = append(s.swagger.Schemes, u.Scheme)
	}
	if path := strings.TrimRight(u.Path, "/"); path != "" && s.swagger.BasePath == "" {
		s.swagger.BasePath = path
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
