// Package typescript extracts declarations (interfaces, classes, enums, type
// aliases) and their decorators from TypeScript sources using tree-sitter.
package typescript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	tsgrammar "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/griffnb/nest-swag/internal/domain"
)

// DefaultMaxFileSize is the largest source file Parse accepts.
const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned for sources above the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidContent is returned for sources that are not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")
)

// Parser turns TypeScript sources into source units. It is safe for
// concurrent use; every Parse call gets its own tree-sitter parser.
type Parser struct {
	maxFileSize int64
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the maximum accepted source size in bytes.
func WithMaxFileSize(bytes int64) Option {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// New creates a parser.
func New(options ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Parse extracts the declarations of one file. The parser is error tolerant:
// malformed source yields whatever declarations could be recovered and sets
// SyntaxErrors on the unit.
func (p *Parser) Parse(ctx context.Context, id string, content []byte) (*domain.SourceUnit, error) {
	tree, err := p.parseTree(ctx, id, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	unit := &domain.SourceUnit{ID: id}
	root := tree.RootNode()
	if root == nil {
		return unit, nil
	}
	unit.SyntaxErrors = root.HasError()

	e := &extractor{content: content}
	for i := 0; i < int(root.ChildCount()); i++ {
		unit.Declarations = append(unit.Declarations, e.topLevel(root.Child(i))...)
	}
	return unit, nil
}

func (p *Parser) parseTree(ctx context.Context, id string, content []byte) (*sitter.Tree, error) {
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, id, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, id)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if strings.HasSuffix(id, ".tsx") {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(tsgrammar.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", id, err)
	}
	return tree, nil
}

type extractor struct {
	content []byte
}

func (e *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(e.content)
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func (e *extractor) topLevel(node *sitter.Node) []*domain.Declaration {
	switch node.Type() {
	case "export_statement":
		var decorators []domain.Annotation
		var decls []*domain.Declaration
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.Type() == "decorator" {
				decorators = append(decorators, e.decorator(child))
				continue
			}
			if decl := e.declaration(child, decorators, true); decl != nil {
				decls = append(decls, decl)
			}
		}
		return decls
	case "ambient_declaration":
		var decls []*domain.Declaration
		for i := 0; i < int(node.ChildCount()); i++ {
			if decl := e.declaration(node.Child(i), nil, false); decl != nil {
				decls = append(decls, decl)
			}
		}
		return decls
	}
	if decl := e.declaration(node, nil, false); decl != nil {
		return []*domain.Declaration{decl}
	}
	return nil
}

func (e *extractor) declaration(node *sitter.Node, decorators []domain.Annotation, exported bool) *domain.Declaration {
	var decl *domain.Declaration
	switch node.Type() {
	case "class_declaration", "abstract_class_declaration", "class":
		decl = e.class(node, decorators)
	case "interface_declaration":
		decl = e.iface(node)
	case "enum_declaration":
		decl = e.enum(node)
	case "type_alias_declaration":
		decl = e.alias(node)
	default:
		return nil
	}
	if decl == nil {
		return nil
	}
	decl.Exported = exported
	decl.Line = line(node)
	if doc := e.docComment(node); doc.text != "" {
		decl.Description = doc.text
	}
	return decl
}

func (e *extractor) class(node *sitter.Node, decorators []domain.Annotation) *domain.Declaration {
	decl := &domain.Declaration{Kind: domain.KindClass, Annotations: decorators}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			decl.Annotations = append(decl.Annotations, e.decorator(child))
		case "type_identifier", "identifier":
			if decl.Name == "" {
				decl.Name = e.text(child)
			}
		case "class_heritage":
			decl.Extends = e.classHeritage(child)
		case "class_body":
			e.classBody(child, decl)
		}
	}
	if decl.Name == "" {
		return nil
	}
	return decl
}

func (e *extractor) classHeritage(node *sitter.Node) []string {
	var bases []string
	for i := 0; i < int(node.ChildCount()); i++ {
		clause := node.Child(i)
		if clause.Type() != "extends_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			base := clause.NamedChild(j)
			if base.Type() == "type_arguments" {
				continue
			}
			bases = append(bases, e.text(base))
		}
	}
	return bases
}

func (e *extractor) classBody(body *sitter.Node, decl *domain.Declaration) {
	var pending []domain.Annotation
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "decorator":
			pending = append(pending, e.decorator(child))
			continue
		case "comment":
			continue
		case "method_definition":
			if m, ok := e.method(child, pending); ok {
				decl.Methods = append(decl.Methods, m)
			}
		case "public_field_definition":
			if prop, ok := e.field(child); ok {
				decl.Properties = append(decl.Properties, prop)
			}
		}
		pending = nil
	}
}

func (e *extractor) method(node *sitter.Node, decorators []domain.Annotation) (domain.Method, bool) {
	m := domain.Method{Annotations: decorators, Line: line(node)}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			m.Annotations = append(m.Annotations, e.decorator(child))
		case "property_identifier", "private_property_identifier":
			m.Name = e.text(child)
		case "formal_parameters":
			m.Parameters = e.parameters(child)
		case "type_annotation":
			m.ReturnTypeText = e.typeAnnotation(child)
		}
	}
	if m.Name == "" || m.Name == "constructor" {
		return m, false
	}
	doc := e.docComment(node)
	m.Description = doc.text
	_, m.Deprecated = doc.tags["deprecated"]
	return m, true
}

func (e *extractor) parameters(node *sitter.Node) []domain.Parameter {
	var params []domain.Parameter
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		kind := child.Type()
		if kind != "required_parameter" && kind != "optional_parameter" {
			continue
		}
		param := domain.Parameter{Optional: kind == "optional_parameter"}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "decorator":
				param.Annotations = append(param.Annotations, e.decorator(gc))
			case "identifier", "object_pattern", "array_pattern", "this":
				if param.Name == "" {
					param.Name = e.text(gc)
				}
			case "?", "=":
				param.Optional = true
			case "type_annotation":
				param.TypeText = e.typeAnnotation(gc)
			}
		}
		params = append(params, param)
	}
	return params
}

func (e *extractor) field(node *sitter.Node) (domain.Property, bool) {
	var prop domain.Property
	afterEquals := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if afterEquals {
			if prop.Default == "" {
				prop.Default = e.text(child)
			}
			continue
		}
		switch child.Type() {
		case "static":
			return prop, false
		case "property_identifier", "private_property_identifier":
			prop.Name = e.text(child)
		case "string", "number":
			if prop.Name == "" {
				prop.Name = domain.UnquoteLiteral(e.text(child))
			}
		case "?":
			prop.Optional = true
		case "type_annotation":
			prop.TypeText = e.typeAnnotation(child)
		case "=":
			afterEquals = true
		}
	}
	if prop.Name == "" {
		return prop, false
	}
	if prop.TypeText == "" && prop.Default != "" {
		prop.TypeText = literalType(prop.Default)
	}
	doc := e.docComment(node)
	prop.Description = doc.text
	if prop.Default == "" {
		prop.Default = doc.tags["default"]
	}
	return prop, true
}

// literalType infers a declared type from an initializer when the field has
// no annotation.
func literalType(value string) string {
	switch {
	case value == "true" || value == "false":
		return "boolean"
	case domain.IsQuoted(value):
		return "string"
	case strings.HasPrefix(value, "new Date"):
		return "Date"
	case strings.HasPrefix(value, "["):
		return "any[]"
	}
	if value != "" && (value[0] == '-' || (value[0] >= '0' && value[0] <= '9')) {
		return "number"
	}
	return ""
}

func (e *extractor) iface(node *sitter.Node) *domain.Declaration {
	decl := &domain.Declaration{Kind: domain.KindInterface}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			decl.Name = e.text(child)
		case "extends_type_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				decl.Extends = append(decl.Extends, e.text(child.NamedChild(j)))
			}
		case "interface_body", "object_type":
			decl.Properties = e.objectMembers(child)
		}
	}
	if decl.Name == "" {
		return nil
	}
	return decl
}

func (e *extractor) objectMembers(body *sitter.Node) []domain.Property {
	var props []domain.Property
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child.Type() != "property_signature" {
			continue
		}
		var prop domain.Property
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "property_identifier":
				prop.Name = e.text(gc)
			case "string", "number":
				if prop.Name == "" {
					prop.Name = domain.UnquoteLiteral(e.text(gc))
				}
			case "?":
				prop.Optional = true
			case "type_annotation":
				prop.TypeText = e.typeAnnotation(gc)
			}
		}
		if prop.Name == "" {
			continue
		}
		doc := e.docComment(child)
		prop.Description = doc.text
		prop.Default = doc.tags["default"]
		props = append(props, prop)
	}
	return props
}

func (e *extractor) enum(node *sitter.Node) *domain.Declaration {
	decl := &domain.Declaration{Kind: domain.KindEnum}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			decl.Name = e.text(child)
		case "enum_body":
			decl.Members = e.enumMembers(child)
		}
	}
	if decl.Name == "" {
		return nil
	}
	return decl
}

func (e *extractor) enumMembers(body *sitter.Node) []domain.EnumMember {
	var members []domain.EnumMember
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "property_identifier", "string":
			members = append(members, domain.EnumMember{Name: domain.UnquoteLiteral(e.text(child))})
		case "enum_assignment":
			var member domain.EnumMember
			afterEquals := false
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch {
				case gc.Type() == "=":
					afterEquals = true
				case afterEquals && member.Value == "":
					member.Value = e.text(gc)
				case member.Name == "":
					member.Name = domain.UnquoteLiteral(e.text(gc))
				}
			}
			if member.Name != "" {
				members = append(members, member)
			}
		}
	}
	return members
}

func (e *extractor) alias(node *sitter.Node) *domain.Declaration {
	decl := &domain.Declaration{Kind: domain.KindAlias}
	if name := node.ChildByFieldName("name"); name != nil {
		decl.Name = e.text(name)
	}
	if value := node.ChildByFieldName("value"); value != nil {
		decl.AliasOf = e.text(value)
	}
	if decl.Name == "" {
		return nil
	}
	return decl
}

// typeAnnotation returns the type text of a ": T" annotation node.
func (e *extractor) typeAnnotation(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != ":" {
			return e.text(child)
		}
	}
	return ""
}
