package sightline

import "strings"

// TypeExpr is a resolved type expression attached to a span. The variant
// set is fixed by the producing compiler; consumers switch exhaustively.
// A nil TypeExpr means the occurrence has no resolved type (type-level and
// class occurrences).
type TypeExpr interface {
	isTypeExpr()

	// Render returns display text: "a", "List<Int>", "(a -> b) -> b".
	Render() string
}

// TypeVar is a type variable.
type TypeVar struct {
	Name string
}

// TypeCon is a constructor application: Con applied to zero or more
// argument types. The head type constructor of the expression is Con.
type TypeCon struct {
	Con  Identity
	Args []TypeExpr
}

// TypeFunc is a function type.
type TypeFunc struct {
	From TypeExpr
	To   TypeExpr
}

func (TypeVar) isTypeExpr()  {}
func (TypeCon) isTypeExpr()  {}
func (TypeFunc) isTypeExpr() {}

func (t TypeVar) Render() string {
	return t.Name
}

func (t TypeCon) Render() string {
	if len(t.Args) == 0 {
		return t.Con.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Render()
	}
	return t.Con.Name + "<" + strings.Join(args, ", ") + ">"
}

func (t TypeFunc) Render() string {
	from := t.From.Render()
	if _, nested := t.From.(TypeFunc); nested {
		from = "(" + from + ")"
	}
	return from + " -> " + t.To.Render()
}

// FreeVars returns the set of type-variable names occurring in t.
// A nil expression has no free variables.
func FreeVars(t TypeExpr) map[string]bool {
	vars := make(map[string]bool)
	collectFreeVars(t, vars)
	return vars
}

func collectFreeVars(t TypeExpr, into map[string]bool) {
	switch v := t.(type) {
	case TypeVar:
		into[v.Name] = true
	case TypeCon:
		for _, a := range v.Args {
			collectFreeVars(a, into)
		}
	case TypeFunc:
		collectFreeVars(v.From, into)
		collectFreeVars(v.To, into)
	case nil:
	}
}

// HeadCon returns the outermost applied constructor of t: List for
// List<Int>. Variables, function types, and absent types have no head
// constructor.
func HeadCon(t TypeExpr) (Identity, bool) {
	if con, ok := t.(TypeCon); ok {
		return con.Con, true
	}
	return Identity{}, false
}
