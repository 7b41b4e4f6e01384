package base

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/griffnb/nest-swag/internal/domain"
)

var mimeTypePattern = regexp.MustCompile("^[^/]+/[^/]+$")

var mimeTypeAliases = map[string]string{
	"json":                  "application/json",
	"xml":                   "text/xml",
	"plain":                 "text/plain",
	"html":                  "text/html",
	"mpfd":                  "multipart/form-data",
	"x-www-form-urlencoded": "application/x-www-form-urlencoded",
	"json-api":              "application/vnd.api+json",
	"json-stream":           "application/x-json-stream",
	"octet-stream":          "application/octet-stream",
	"png":                   "image/png",
	"jpeg":                  "image/jpeg",
	"gif":                   "image/gif",
	"event-stream":          "text/event-stream",
}

// MimeTypes returns the MIME types named by the arguments of the first
// annotation called name (@ApiConsumes, @ApiProduces). Aliases like "json"
// or "mpfd" are expanded.
func MimeTypes(annotations []domain.Annotation, name string) ([]string, error) {
	ann, ok := domain.FindAnnotation(annotations, name)
	if !ok {
		return nil, nil
	}
	var mimeTypes []string
	for _, a := range ann.Args {
		if err := parseMimeTypeList(a, &mimeTypes); err != nil {
			return nil, err
		}
	}
	return mimeTypes, nil
}

// parseMimeTypeList parses comma-separated MIME types and their aliases
func parseMimeTypeList(list string, mimeTypes *[]string) error {
	for _, typeName := range strings.Split(list, ",") {
		typeName = strings.TrimSpace(typeName)
		if typeName == "" {
			continue
		}
		if mimeTypePattern.MatchString(typeName) {
			*mimeTypes = append(*mimeTypes, typeName)
			continue
		}

		aliasMimeType, ok := mimeTypeAliases[typeName]
		if !ok {
			return fmt.Errorf("%v accept type can't be accepted", typeName)
		}
		*mimeTypes = append(*mimeTypes, aliasMimeType)
	}
	return nil
}

// arg returns an annotation argument, treating undefined and null as absent.
func arg(ann domain.Annotation, i int) string {
	v := strings.TrimSpace(ann.Arg(i))
	if v == "undefined" || v == "null" {
		return ""
	}
	return v
}

// listLiteral reads a string array literal like ['read', "write"].
func listLiteral(text string) []string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		if text == "" {
			return []string{}
		}
		return []string{domain.UnquoteLiteral(text)}
	}
	items := []string{}
	for _, item := range strings.Split(text[1:len(text)-1], ",") {
		if item = domain.UnquoteLiteral(strings.TrimSpace(item)); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// objectProperty reads a string property from object literal source text,
// e.g. objectProperty("{ in: 'header' }", "in") is "header".
func objectProperty(text, key string) string {
	if text == "" {
		return ""
	}
	pattern := regexp.MustCompile(`(?:^|[{,\s])['"]?` + regexp.QuoteMeta(key) + `['"]?\s*:\s*['"` + "`" + `]([^'"` + "`" + `]*)['"` + "`" + `]`)
	if m := pattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
