package cc

import "strings"

type TypeName struct {
	Sp   Span
	Name string // e.g. "int", "struct Point"
}

func NewTypeName(name string, sp Span) *TypeName { return &TypeName{Sp: sp, Name: name} }
func (n *TypeName) Kind() NodeKind                { return KindTypeName }
func (n *TypeName) Span() Span                    { return n.Sp }
func (n *TypeName) Clone() CCN                    { return &TypeName{Sp: n.Sp, Name: n.Name} }
func (n *TypeName) String() string                { return n.Name }

type PointerType struct {
	Sp   Span
	Elem CCN
}

func NewPointerType(elem CCN, sp Span) *PointerType { return &PointerType{Sp: sp, Elem: elem} }
func (n *PointerType) Kind() NodeKind                { return KindPointerType }
func (n *PointerType) Span() Span                    { return n.Sp }
func (n *PointerType) Clone() CCN                    { return &PointerType{Sp: n.Sp, Elem: cloneNode(n.Elem)} }
func (n *PointerType) String() string                { return n.Elem.String() + "*" }

type ArrayType struct {
	Sp   Span
	Elem CCN
	Dim  CCN // nil for unsized
}

func NewArrayType(elem, dim CCN, sp Span) *ArrayType { return &ArrayType{Sp: sp, Elem: elem, Dim: dim} }
func (n *ArrayType) Kind() NodeKind                   { return KindArrayType }
func (n *ArrayType) Span() Span                       { return n.Sp }
func (n *ArrayType) Clone() CCN {
	return &ArrayType{Sp: n.Sp, Elem: cloneNode(n.Elem), Dim: cloneNode(n.Dim)}
}
func (n *ArrayType) String() string {
	if n.Dim == nil {
		return n.Elem.String() + "[]"
	}
	return n.Elem.String() + "[" + n.Dim.String() + "]"
}

// SliceType is CC's `T[:]` (Unique=false) / `T[:!]` (Unique=true),
// lowered by the slice-type pass into CCSlice / CCSliceUnique (§4.5).
type SliceType struct {
	Sp     Span
	Elem   CCN
	Unique bool
	Const  bool
	Volatile bool
}

func NewSliceType(elem CCN, unique bool, sp Span) *SliceType { return &SliceType{Sp: sp, Elem: elem, Unique: unique} }
func (n *SliceType) Kind() NodeKind                            { return KindSliceType }
func (n *SliceType) Span() Span                                { return n.Sp }
func (n *SliceType) Clone() CCN {
	return &SliceType{Sp: n.Sp, Elem: cloneNode(n.Elem), Unique: n.Unique, Const: n.Const, Volatile: n.Volatile}
}
func (n *SliceType) String() string {
	if n.Unique {
		return n.Elem.String() + "[:!]"
	}
	return n.Elem.String() + "[:]"
}

// ChanOptions is the bracket content after a channel element type:
// `[~ capacity , direction (>|<) , options… ]` (§4.5).
type ChanOptions struct {
	Capacity     string // numeric or symbolic; "" if absent
	Mode         string // "sync" | "async" | ""
	Backpressure string // "drop" | "dropold" | "dropnew" | ""
	Topology     string // e.g. "1:1", "1:N", "N:1", "N:N"; "" for default
}

type ChanTxType struct {
	Sp   Span
	Elem CCN
	Opts ChanOptions
}

func NewChanTxType(elem CCN, opts ChanOptions, sp Span) *ChanTxType {
	return &ChanTxType{Sp: sp, Elem: elem, Opts: opts}
}
func (n *ChanTxType) Kind() NodeKind { return KindChanTxType }
func (n *ChanTxType) Span() Span     { return n.Sp }
func (n *ChanTxType) Clone() CCN     { return &ChanTxType{Sp: n.Sp, Elem: cloneNode(n.Elem), Opts: n.Opts} }
func (n *ChanTxType) String() string { return "CCChanTx" }

type ChanRxType struct {
	Sp   Span
	Elem CCN
	Opts ChanOptions
}

func NewChanRxType(elem CCN, opts ChanOptions, sp Span) *ChanRxType {
	return &ChanRxType{Sp: sp, Elem: elem, Opts: opts}
}
func (n *ChanRxType) Kind() NodeKind { return KindChanRxType }
func (n *ChanRxType) Span() Span     { return n.Sp }
func (n *ChanRxType) Clone() CCN     { return &ChanRxType{Sp: n.Sp, Elem: cloneNode(n.Elem), Opts: n.Opts} }
func (n *ChanRxType) String() string { return "CCChanRx" }

// OptionalType is CC's `T?`, lowered to __CC_OPTIONAL(T) (§4.5).
type OptionalType struct {
	Sp   Span
	Elem CCN
}

func NewOptionalType(elem CCN, sp Span) *OptionalType { return &OptionalType{Sp: sp, Elem: elem} }
func (n *OptionalType) Kind() NodeKind                 { return KindOptionalType }
func (n *OptionalType) Span() Span                     { return n.Sp }
func (n *OptionalType) Clone() CCN                     { return &OptionalType{Sp: n.Sp, Elem: cloneNode(n.Elem)} }
func (n *OptionalType) String() string                 { return n.Elem.String() + "?" }

// ResultType is CC's `T!>(E)` / CCRes(T,E) / CCResPtr(T,E), lowered to
// CCResult_<mT>_<mE> (§4.5).
type ResultType struct {
	Sp        Span
	Ok        CCN
	Err       CCN
	OkIsPtr   bool
}

func NewResultType(ok, err CCN, sp Span) *ResultType { return &ResultType{Sp: sp, Ok: ok, Err: err} }
func (n *ResultType) Kind() NodeKind                  { return KindResultType }
func (n *ResultType) Span() Span                      { return n.Sp }
func (n *ResultType) Clone() CCN {
	return &ResultType{Sp: n.Sp, Ok: cloneNode(n.Ok), Err: cloneNode(n.Err), OkIsPtr: n.OkIsPtr}
}
func (n *ResultType) String() string { return n.Ok.String() + "!>(" + n.Err.String() + ")" }

type FuncType struct {
	Sp     Span
	Return CCN
	Params []CCN
}

func NewFuncType(ret CCN, params []CCN, sp Span) *FuncType { return &FuncType{Sp: sp, Return: ret, Params: params} }
func (n *FuncType) Kind() NodeKind                          { return KindFuncType }
func (n *FuncType) Span() Span                              { return n.Sp }
func (n *FuncType) Clone() CCN {
	return &FuncType{Sp: n.Sp, Return: cloneNode(n.Return), Params: cloneList(n.Params)}
}
func (n *FuncType) String() string {
	var params []string
	for _, p := range n.Params {
		params = append(params, p.String())
	}
	return n.Return.String() + "(*)(" + strings.Join(params, ", ") + ")"
}
