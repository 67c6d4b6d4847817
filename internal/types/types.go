// Package types implements the Type tagged variant from spec.md §3 and the
// value-type mapping and promotion rules consumed by semantic analysis and
// code generation.
package types

import "fmt"

// Kind discriminates the Type tagged variant.
type Kind int

const (
	Invalid Kind = iota
	Integer
	Float
	Boolean
	String
	Byte
	Unsigned
	Long
	ULong
	Big
	UBig
	Unit
	Any
	ArrayKind
	MatrixKind
	MapKind
	ObjectKind
	GenericKind
	TypeParamKind
	FunctionKind
)

// Type is a value-like, freely-cloned tagged variant over spec.md §3's Type
// entity. Only the fields relevant to Kind are populated.
type Type struct {
	Kind Kind

	Elem  *Type // ArrayKind, MatrixKind
	Key   *Type // MapKind
	Value *Type // MapKind

	ObjectName string // ObjectKind

	GenericBase *Type   // GenericKind
	GenericArgs []Type  // GenericKind
	ParamName   string  // TypeParamKind

	FuncParams []Type // FunctionKind
	FuncReturn *Type  // FunctionKind
}

// Primitive constructors.
func NewInteger() Type  { return Type{Kind: Integer} }
func NewFloat() Type    { return Type{Kind: Float} }
func NewBoolean() Type  { return Type{Kind: Boolean} }
func NewString() Type   { return Type{Kind: String} }
func NewByte() Type     { return Type{Kind: Byte} }
func NewUnsigned() Type { return Type{Kind: Unsigned} }
func NewLong() Type     { return Type{Kind: Long} }
func NewULong() Type    { return Type{Kind: ULong} }
func NewBig() Type      { return Type{Kind: Big} }
func NewUBig() Type     { return Type{Kind: UBig} }
func NewUnit() Type     { return Type{Kind: Unit} }
func NewAny() Type      { return Type{Kind: Any} }

func NewArray(elem Type) Type  { return Type{Kind: ArrayKind, Elem: &elem} }
func NewMatrix(elem Type) Type { return Type{Kind: MatrixKind, Elem: &elem} }
func NewMap(k, v Type) Type    { return Type{Kind: MapKind, Key: &k, Value: &v} }
func NewObject(name string) Type { return Type{Kind: ObjectKind, ObjectName: name} }
func NewGeneric(base Type, args []Type) Type {
	return Type{Kind: GenericKind, GenericBase: &base, GenericArgs: args}
}
func NewTypeParameter(name string) Type { return Type{Kind: TypeParamKind, ParamName: name} }
func NewFunction(params []Type, ret Type) Type {
	return Type{Kind: FunctionKind, FuncParams: params, FuncReturn: &ret}
}

// IsNumeric reports whether t is one of the numeric primitive kinds.
func (t Type) IsNumeric() bool {
	switch t.Kind {
	case Integer, Float, Byte, Unsigned, Long, ULong, Big, UBig:
		return true
	}
	return false
}

// IsReference reports whether a value of t is represented in codegen as an
// i32 pointer into linear memory (spec.md §4.4.4).
func (t Type) IsReference() bool {
	switch t.Kind {
	case String, ArrayKind, MatrixKind, MapKind, ObjectKind, Big, UBig:
		return true
	}
	return false
}

// Equals reports structural equality, used for exact overload-signature
// matching (spec.md §9: "resolved not by subtyping but by exact match").
func (t Type) Equals(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case ArrayKind, MatrixKind:
		return t.Elem.Equals(*o.Elem)
	case MapKind:
		return t.Key.Equals(*o.Key) && t.Value.Equals(*o.Value)
	case ObjectKind:
		return t.ObjectName == o.ObjectName
	case TypeParamKind:
		return t.ParamName == o.ParamName
	case GenericKind:
		if !t.GenericBase.Equals(*o.GenericBase) || len(t.GenericArgs) != len(o.GenericArgs) {
			return false
		}
		for i := range t.GenericArgs {
			if !t.GenericArgs[i].Equals(o.GenericArgs[i]) {
				return false
			}
		}
		return true
	case FunctionKind:
		if len(t.FuncParams) != len(o.FuncParams) || !t.FuncReturn.Equals(*o.FuncReturn) {
			return false
		}
		for i := range t.FuncParams {
			if !t.FuncParams[i].Equals(o.FuncParams[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the canonical name used both in diagnostics and as the
// component of a function's signature key (spec.md §3, §4.2.2).
func (t Type) String() string {
	switch t.Kind {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Byte:
		return "byte"
	case Unsigned:
		return "unsigned"
	case Long:
		return "long"
	case ULong:
		return "ulong"
	case Big:
		return "big"
	case UBig:
		return "ubig"
	case Unit:
		return "unit"
	case Any:
		return "any"
	case ArrayKind:
		return fmt.Sprintf("Array<%s>", t.Elem.String())
	case MatrixKind:
		return fmt.Sprintf("Matrix<%s>", t.Elem.String())
	case MapKind:
		return fmt.Sprintf("Map<%s,%s>", t.Key.String(), t.Value.String())
	case ObjectKind:
		return t.ObjectName
	case GenericKind:
		s := t.GenericBase.String() + "<"
		for i, a := range t.GenericArgs {
			if i > 0 {
				s += ","
			}
			s += a.String()
		}
		return s + ">"
	case TypeParamKind:
		return t.ParamName
	case FunctionKind:
		s := "("
		for i, p := range t.FuncParams {
			if i > 0 {
				s += ","
			}
			s += p.String()
		}
		return s + ")->" + t.FuncReturn.String()
	default:
		return "<invalid>"
	}
}

// Promote implements spec.md §4.3's numeric promotion rule: Integer,Float →
// Float. Non-promotable pairs are returned as (Type{}, false).
func Promote(a, b Type) (Type, bool) {
	if a.Equals(b) {
		return a, true
	}
	if a.Kind == Integer && b.Kind == Float {
		return NewFloat(), true
	}
	if a.Kind == Float && b.Kind == Integer {
		return NewFloat(), true
	}
	return Type{}, false
}
