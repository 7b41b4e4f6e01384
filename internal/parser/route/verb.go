package route

import (
	"net/http"
)

// Verb is the closed set of handler verbs.
type Verb int

const (
	// VerbUnknown marks a method that is not an entry point.
	VerbUnknown Verb = iota
	VerbGet
	VerbPost
	VerbPut
	VerbPatch
	VerbDelete
	VerbOptions
	VerbHead
	VerbAll
)

var verbAnnotations = map[string]Verb{
	"Get":     VerbGet,
	"Post":    VerbPost,
	"Put":     VerbPut,
	"Patch":   VerbPatch,
	"Delete":  VerbDelete,
	"Options": VerbOptions,
	"Head":    VerbHead,
	"All":     VerbAll,
}

// VerbFromAnnotation maps a method annotation name to its verb. Anything
// else is VerbUnknown.
func VerbFromAnnotation(name string) Verb {
	return verbAnnotations[name]
}

// HTTPMethod returns the upper case HTTP method, "ALL" or "".
func (v Verb) HTTPMethod() string {
	switch v {
	case VerbGet:
		return http.MethodGet
	case VerbPost:
		return http.MethodPost
	case VerbPut:
		return http.MethodPut
	case VerbPatch:
		return http.MethodPatch
	case VerbDelete:
		return http.MethodDelete
	case VerbOptions:
		return http.MethodOptions
	case VerbHead:
		return http.MethodHead
	case VerbAll:
		return "ALL"
	}
	return ""
}

func (v Verb) String() string {
	if m := v.HTTPMethod(); m != "" {
		return m
	}
	return "UNKNOWN"
}

// Location is where a handler parameter is read from.
type Location string

const (
	LocationBody   Location = "body"
	LocationPath   Location = "path"
	LocationQuery  Location = "query"
	LocationHeader Location = "header"
)

var locationAnnotations = map[string]Location{
	"Body":    LocationBody,
	"Param":   LocationPath,
	"Query":   LocationQuery,
	"Headers": LocationHeader,
	"Header":  LocationHeader,
}

// LocationFromAnnotation maps a parameter annotation name to its location.
// Unmatched and missing annotations read from the body.
func LocationFromAnnotation(name string) Location {
	if loc, ok := locationAnnotations[name]; ok {
		return loc
	}
	return LocationBody
}
