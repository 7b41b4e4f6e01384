// Package domain contains the declaration model shared by the loader, the
// registry, the resolver and the route extractor.
package domain

// DeclarationKind identifies what a named declaration is.
type DeclarationKind string

const (
	// KindInterface is an interface declaration.
	KindInterface DeclarationKind = "interface"
	// KindClass is a class declaration.
	KindClass DeclarationKind = "class"
	// KindEnum is an enum declaration.
	KindEnum DeclarationKind = "enum"
	// KindAlias is a type alias declaration (type X = ...).
	KindAlias DeclarationKind = "alias"
)

// SourceUnit is one parsed source module.
type SourceUnit struct {
	// ID is the slash separated path relative to the search root.
	ID string `json:"id"`

	// Path is the path the unit was read from.
	Path string `json:"path,omitempty"`

	// Declarations in source order.
	Declarations []*Declaration `json:"declarations"`

	// SyntaxErrors is set when the provider recovered from malformed source.
	SyntaxErrors bool `json:"syntaxErrors,omitempty"`
}

// Declaration is a named type declaration inside a source unit.
type Declaration struct {
	Name string          `json:"name"`
	Kind DeclarationKind `json:"kind"`

	// Unit is the ID of the declaring unit. It is filled by the registry
	// when the unit is collected.
	Unit string `json:"-"`

	Properties  []Property   `json:"properties,omitempty"`
	Methods     []Method     `json:"methods,omitempty"`
	Members     []EnumMember `json:"members,omitempty"`
	Extends     []string     `json:"extends,omitempty"`
	AliasOf     string       `json:"aliasOf,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
	Description string       `json:"description,omitempty"`
	Exported    bool         `json:"exported,omitempty"`
	Line        int          `json:"line,omitempty"`
}

// Property is a named member of an interface or class.
type Property struct {
	Name        string `json:"name"`
	TypeText    string `json:"type"`
	Optional    bool   `json:"optional,omitempty"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
}

// Method is a class method together with its decorators.
type Method struct {
	Name           string       `json:"name"`
	Parameters     []Parameter  `json:"parameters,omitempty"`
	ReturnTypeText string       `json:"returnType,omitempty"`
	Annotations    []Annotation `json:"annotations,omitempty"`
	Description    string       `json:"description,omitempty"`
	Deprecated     bool         `json:"deprecated,omitempty"`
	Line           int          `json:"line,omitempty"`
}

// Parameter is a method parameter.
type Parameter struct {
	Name        string       `json:"name"`
	TypeText    string       `json:"type,omitempty"`
	Optional    bool         `json:"optional,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation is a decorator attached to a declaration, method or parameter.
// Args holds literal arguments: strings unquoted, everything else verbatim.
type Annotation struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// EnumMember is one enum member. Value is the initializer text as written
// and is empty when the member has no initializer.
type EnumMember struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}
