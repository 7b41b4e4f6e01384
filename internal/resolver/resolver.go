package resolver

import (
	"strconv"
	"strings"

	"github.com/griffnb/nest-swag/internal/domain"
	"github.com/griffnb/nest-swag/internal/typeexpr"
)

// Index is the declaration lookup the resolver needs from the source unit index.
type Index interface {
	FindDeclaration(name, scope string) *domain.Declaration
	SchemaName(decl *domain.Declaration) string
}

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(format string, v ...interface{}) {}

// Resolver maps (type text, scope) to a resolved Type. It never fails and is
// safe for concurrent use.
type Resolver struct {
	index Index
	cache *Cache
	debug Debugger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDebugger sets the debugger.
func WithDebugger(debug Debugger) Option {
	return func(r *Resolver) {
		if debug != nil {
			r.debug = debug
		}
	}
}

// New creates a resolver over the index. A nil cache gets a fresh one.
func New(index Index, cache *Cache, options ...Option) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	r := &Resolver{index: index, cache: cache, debug: noOpDebugger{}}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve resolves a type reference as seen from the scope unit. An empty
// scope searches the whole index.
//
// Only the outermost interface or class is expanded; interfaces and classes
// nested in its properties come back as Ref to their catalog entry.
func (r *Resolver) Resolve(text, scope string) *Type {
	node := typeexpr.Parse(text)
	if node.Kind == typeexpr.KindName && node.Name == "" {
		return Unknown(strings.TrimSpace(text))
	}
	t := r.resolveNode(node, scope, visiting{})
	switch {
	case t.Kind == KindRef:
		// an alias that only leads back to itself
		r.debug.Printf("resolver: %q does not resolve to a shape", text)
		return Unknown(strings.TrimSpace(text))
	case t.Kind == KindUnknown && node.Kind == typeexpr.KindName:
		return Unknown(strings.TrimSpace(text))
	}
	return t
}

// visiting holds the declarations on the current resolution path, keyed by
// unit and name.
type visiting map[string]domain.DeclarationKind

func declKey(decl *domain.Declaration) string {
	return decl.Unit + "#" + decl.Name
}

// insideObject reports whether an interface or class is on the path.
func (v visiting) insideObject() bool {
	for _, kind := range v {
		if kind == domain.KindInterface || kind == domain.KindClass {
			return true
		}
	}
	return false
}

func (r *Resolver) resolveNode(node *typeexpr.Node, scope string, path visiting) *Type {
	text := node.String()

	// Path bound entries depend on where they were built; only a top level
	// request may reuse them.
	if entry, ok := r.cache.get(text, scope); ok && (len(path) == 0 || !entry.pathBound) {
		return entry.t
	}

	t := r.classify(node, scope, path)
	bound := pathBound(t)
	if len(path) > 0 && bound {
		return t
	}
	return r.cache.putIfAbsent(text, scope, cacheEntry{t: t, pathBound: bound})
}

// pathBound reports whether t holds a Ref or an expanded interface or class.
// Both differ between a top level request and a nested one.
func pathBound(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindRef:
		return true
	case KindArray:
		return pathBound(t.Element)
	case KindUnion:
		for _, m := range t.Members {
			if pathBound(m) {
				return true
			}
		}
	case KindObject:
		if t.ObjectKind == ObjectInterface || t.ObjectKind == ObjectClass {
			return true
		}
		for _, p := range t.Properties {
			if pathBound(p.Type) {
				return true
			}
		}
	}
	return false
}

func (r *Resolver) classify(node *typeexpr.Node, scope string, path visiting) *Type {
	switch node.Kind {
	case typeexpr.KindLiteral:
		return Primitive(node.LiteralFamily())
	case typeexpr.KindFunction:
		return Primitive(PrimitiveFunction)
	case typeexpr.KindArray:
		return ArrayOf(r.resolveNode(node.Elem, scope, path))
	case typeexpr.KindTuple:
		switch len(node.Members) {
		case 0:
			return ArrayOf(Primitive(PrimitiveAny))
		case 1:
			return ArrayOf(r.resolveNode(node.Members[0], scope, path))
		}
		return ArrayOf(r.resolveMembers(node.Members, scope, path))
	case typeexpr.KindUnion:
		return r.resolveMembers(node.Members, scope, path)
	case typeexpr.KindIntersection:
		return r.resolveIntersection(node, scope, path)
	case typeexpr.KindObject:
		return r.resolveInlineObject(node, scope, path)
	}

	if canonical, ok := LookupPrimitive(node.Name); ok {
		return Primitive(canonical)
	}

	decl := r.index.FindDeclaration(node.Name, scope)
	if decl == nil {
		r.debug.Printf("resolver: no declaration for %q (scope %q)", node.Name, scope)
		return Unknown(node.Name)
	}
	return r.resolveDeclaration(decl, path, false)
}

// resolveExpanded resolves node like resolveNode, except that a named
// interface or class is expanded even below another object. Inherited and
// intersected members need the properties, not a Ref.
func (r *Resolver) resolveExpanded(node *typeexpr.Node, scope string, path visiting) *Type {
	if node.Kind != typeexpr.KindName {
		return r.resolveNode(node, scope, path)
	}
	if _, ok := LookupPrimitive(node.Name); ok {
		return r.resolveNode(node, scope, path)
	}
	decl := r.index.FindDeclaration(node.Name, scope)
	if decl == nil {
		return r.resolveNode(node, scope, path)
	}
	return r.resolveDeclaration(decl, path, true)
}

func (r *Resolver) resolveMembers(members []*typeexpr.Node, scope string, path visiting) *Type {
	resolved := make([]*Type, 0, len(members))
	for _, m := range members {
		resolved = append(resolved, r.resolveNode(m, scope, path))
	}
	return UnionOf(resolved...)
}

// resolveIntersection merges object members; anything else keeps the first member.
func (r *Resolver) resolveIntersection(node *typeexpr.Node, scope string, path visiting) *Type {
	merged := &Type{Kind: KindObject, ObjectKind: ObjectInline, OriginUnit: scope}
	for _, m := range node.Members {
		t := r.resolveExpanded(m, scope, path)
		if t.Kind != KindObject {
			return r.resolveNode(node.Members[0], scope, path)
		}
		merged.Properties = mergeProperties(merged.Properties, t.Properties)
	}
	return merged
}

func (r *Resolver) resolveInlineObject(node *typeexpr.Node, scope string, path visiting) *Type {
	obj := &Type{Kind: KindObject, ObjectKind: ObjectInline, OriginUnit: scope}
	for _, f := range node.Fields {
		obj.Properties = append(obj.Properties, Property{
			Name:     f.Name,
			Type:     r.resolveNode(f.Type, scope, path),
			Optional: f.Optional,
		})
	}
	return obj
}

// resolveDeclaration expands decl, or returns a Ref when decl is already on
// the path or is an interface or class nested below another one.
func (r *Resolver) resolveDeclaration(decl *domain.Declaration, path visiting, expand bool) *Type {
	key := declKey(decl)
	_, cycle := path[key]
	nested := !expand && path.insideObject() &&
		(decl.Kind == domain.KindInterface || decl.Kind == domain.KindClass)
	if cycle || nested {
		return &Type{
			Kind:       KindRef,
			Name:       decl.Name,
			SchemaName: r.index.SchemaName(decl),
			OriginUnit: decl.Unit,
		}
	}
	path[key] = decl.Kind
	defer delete(path, key)

	switch decl.Kind {
	case domain.KindInterface, domain.KindClass:
		return r.resolveObject(decl, path)
	case domain.KindEnum:
		return r.resolveEnum(decl)
	case domain.KindAlias:
		return r.resolveAlias(decl, path)
	}
	return Unknown(decl.Name)
}

func (r *Resolver) resolveObject(decl *domain.Declaration, path visiting) *Type {
	obj := &Type{
		Kind:        KindObject,
		Name:        decl.Name,
		SchemaName:  r.index.SchemaName(decl),
		ObjectKind:  ObjectInterface,
		OriginUnit:  decl.Unit,
		Description: decl.Description,
	}
	if decl.Kind == domain.KindClass {
		obj.ObjectKind = ObjectClass
	}

	for _, base := range decl.Extends {
		inherited := r.resolveExpanded(typeexpr.Parse(base), decl.Unit, path)
		if inherited.Kind == KindObject {
			obj.Properties = mergeProperties(obj.Properties, inherited.Properties)
		}
	}

	own := make([]Property, 0, len(decl.Properties))
	for _, p := range decl.Properties {
		own = append(own, Property{
			Name:        p.Name,
			Type:        r.resolveNode(typeexpr.Parse(p.TypeText), decl.Unit, path),
			Optional:    p.Optional,
			Description: p.Description,
			Default:     p.Default,
		})
	}
	obj.Properties = mergeProperties(obj.Properties, own)
	return obj
}

// mergeProperties appends props to base; a property already present by name
// is replaced in place.
func mergeProperties(base, props []Property) []Property {
	for _, p := range props {
		replaced := false
		for i := range base {
			if base[i].Name == p.Name {
				base[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			base = append(base, p)
		}
	}
	return base
}

func (r *Resolver) resolveEnum(decl *domain.Declaration) *Type {
	enum := &Type{
		Kind:        KindEnum,
		Name:        decl.Name,
		SchemaName:  r.index.SchemaName(decl),
		OriginUnit:  decl.Unit,
		Description: decl.Description,
	}

	var next float64
	numeric := true
	for i, m := range decl.Members {
		value, literal := enumValue(m.Value, next, numeric, i)
		switch v := value.(type) {
		case int64:
			next, numeric = float64(v)+1, true
		case float64:
			next, numeric = v+1, true
		default:
			numeric = false
		}

		enum.EnumMembers = append(enum.EnumMembers, EnumMember{Name: m.Name, Value: value, Literal: literal})
		enum.Properties = append(enum.Properties, Property{
			Name:    m.Name,
			Type:    UnionOf(Primitive(PrimitiveString), Primitive(PrimitiveNumber)),
			Default: literal,
		})
	}
	return enum
}

// enumValue computes a member value. Members without an initializer count up
// from the previous numeric member, or use their position after a string member.
func enumValue(raw string, next float64, numeric bool, index int) (interface{}, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if !numeric {
			next = float64(index)
		}
		if next == float64(int64(next)) {
			v := int64(next)
			return v, strconv.FormatInt(v, 10)
		}
		return next, strconv.FormatFloat(next, 'f', -1, 64)
	}
	if domain.IsQuoted(raw) {
		s := domain.UnquoteLiteral(raw)
		return s, s
	}
	if v, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return v, raw
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, raw
	}
	return raw, raw
}

func (r *Resolver) resolveAlias(decl *domain.Declaration, path visiting) *Type {
	t := r.resolveNode(typeexpr.Parse(decl.AliasOf), decl.Unit, path)
	if t.Kind != KindObject || t.Name != "" {
		return t
	}
	named := *t
	named.Name = decl.Name
	named.SchemaName = r.index.SchemaName(decl)
	named.Description = decl.Description
	return &named
}
