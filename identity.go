package sightline

// ModuleRef names a module within its owning compilation unit (package).
type ModuleRef struct {
	Unit string // owning package/unit, "" when unknown
	Name string // module name within the unit
}

func (m ModuleRef) String() string {
	if m.Unit == "" {
		return m.Name
	}
	return m.Unit + ":" + m.Name
}

// DefinitionHint is where the compiler believes an identity is defined.
// The variant set is fixed by the producing compiler; consumers switch
// exhaustively.
type DefinitionHint interface {
	isDefinitionHint()
}

// KnownDefinition is a concrete, directly usable definition location.
type KnownDefinition struct {
	Loc Location
}

// BuiltinDefinition marks a wired-in compiler identity. It never resolves
// to user source.
type BuiltinDefinition struct{}

// UnknownDefinition marks an identity whose recorded location is unusable,
// typically one declared in an externally compiled package. Reason is
// free-form producer text.
type UnknownDefinition struct {
	Reason string
}

func (KnownDefinition) isDefinitionHint()   {}
func (BuiltinDefinition) isDefinitionHint() {}
func (UnknownDefinition) isDefinitionHint() {}

// Identity is a resolved reference to a declared symbol, distinct from any
// particular textual occurrence of it.
type Identity struct {
	Name   string     // unqualified display name
	Module *ModuleRef // owning module, nil for locals
	Def    DefinitionHint
}

// IsZero reports whether the identity carries no information at all. A
// named span with a zero identity indicates a producer bug.
func (id Identity) IsZero() bool {
	return id.Name == "" && id.Module == nil && id.Def == nil
}

// SameDeclaration reports whether two identities refer to the same
// declaration. Only the display name and owning module are compared: the
// definition hint and any producer-side uniqueness are deliberately
// ignored, so identities for one declaration seen by different compilation
// passes compare equal. This is a relaxation of full identity equality,
// not an oversight.
func (id Identity) SameDeclaration(other Identity) bool {
	if id.Name != other.Name {
		return false
	}
	if (id.Module == nil) != (other.Module == nil) {
		return false
	}
	return id.Module == nil || *id.Module == *other.Module
}

// QualifiedName returns the display name prefixed with the owning module
// when one is known.
func (id Identity) QualifiedName() string {
	if id.Module != nil && id.Module.Name != "" {
		return id.Module.Name + "." + id.Name
	}
	return id.Name
}
