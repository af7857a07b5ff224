package cc

import "strings"

// File holds the source's imports first, then its top-level
// declarations in declared order (§3 invariant).
type File struct {
	Sp    Span
	Name  string
	Items []CCN
}

func NewFile(name string, items []CCN, sp Span) *File { return &File{Sp: sp, Name: name, Items: items} }
func (n *File) Kind() NodeKind                         { return KindFile }
func (n *File) Span() Span                             { return n.Sp }
func (n *File) Clone() CCN                             { return &File{Sp: n.Sp, Name: n.Name, Items: cloneList(n.Items)} }
func (n *File) String() string {
	var parts []string
	for _, it := range n.Items {
		parts = append(parts, it.String())
	}
	return strings.Join(parts, "\n")
}

// Include is an `#include "x"` / `#include <x>` directive, recorded
// from a line-oriented pre-parse scan (§4.4 step 6) and prepended to
// the File's items in source order.
type Include struct {
	Sp     Span
	Path   string
	System bool
}

func NewInclude(path string, system bool, sp Span) *Include { return &Include{Sp: sp, Path: path, System: system} }
func (n *Include) Kind() NodeKind                            { return KindInclude }
func (n *Include) Span() Span                                { return n.Sp }
func (n *Include) Clone() CCN                                { return &Include{Sp: n.Sp, Path: n.Path, System: n.System} }
func (n *Include) String() string {
	if n.System {
		return "#include <" + n.Path + ">"
	}
	return "#include \"" + n.Path + "\""
}

// Param is a single function parameter: a name plus its C type
// spelling, used by both FuncDecl and ClosureExpr.
type Param struct {
	Sp   Span
	Name string
	Type CCN // TypeName/PointerType/... or nil for "..."
}

func NewParam(name string, typ CCN, sp Span) *Param { return &Param{Sp: sp, Name: name, Type: typ} }
func (n *Param) Kind() NodeKind                      { return KindParam }
func (n *Param) Span() Span                          { return n.Sp }
func (n *Param) Clone() CCN                          { return &Param{Sp: n.Sp, Name: n.Name, Type: cloneNode(n.Type)} }
func (n *Param) String() string {
	if n.Type == nil {
		return n.Name
	}
	return n.Type.String() + " " + n.Name
}

// FuncDecl has either a body Block or nothing (a prototype), per the
// §3 invariant.
type FuncDecl struct {
	Sp      Span
	Name    string
	Return  CCN
	Params  []*Param
	Body    *Block // nil for a prototype
	IsAsync bool
}

func NewFuncDecl(name string, ret CCN, params []*Param, body *Block, sp Span) *FuncDecl {
	return &FuncDecl{Sp: sp, Name: name, Return: ret, Params: params, Body: body}
}
func (n *FuncDecl) Kind() NodeKind { return KindFuncDecl }
func (n *FuncDecl) Span() Span     { return n.Sp }
func (n *FuncDecl) Clone() CCN {
	var body *Block
	if n.Body != nil {
		body = n.Body.Clone().(*Block)
	}
	return &FuncDecl{Sp: n.Sp, Name: n.Name, Return: cloneNode(n.Return), Params: cloneList(n.Params), Body: body, IsAsync: n.IsAsync}
}
func (n *FuncDecl) String() string {
	var params []string
	for _, p := range n.Params {
		params = append(params, p.String())
	}
	sig := n.Return.String() + " " + n.Name + "(" + strings.Join(params, ", ") + ")"
	if n.Body == nil {
		return sig + ";"
	}
	return sig + " " + n.Body.String()
}

// VarDecl.Init, if present, is an expression node (§3 invariant).
type VarDecl struct {
	Sp   Span
	Name string
	Type CCN
	Init CCN // nil if absent
}

func NewVarDecl(name string, typ, init CCN, sp Span) *VarDecl { return &VarDecl{Sp: sp, Name: name, Type: typ, Init: init} }
func (n *VarDecl) Kind() NodeKind                              { return KindVarDecl }
func (n *VarDecl) Span() Span                                  { return n.Sp }
func (n *VarDecl) Clone() CCN {
	return &VarDecl{Sp: n.Sp, Name: n.Name, Type: cloneNode(n.Type), Init: cloneNode(n.Init)}
}
func (n *VarDecl) String() string {
	s := n.Type.String() + " " + n.Name
	if n.Init != nil {
		s += " = " + n.Init.String()
	}
	return s + ";"
}

type Typedef struct {
	Sp   Span
	Name string
	Type CCN
}

func NewTypedef(name string, typ CCN, sp Span) *Typedef { return &Typedef{Sp: sp, Name: name, Type: typ} }
func (n *Typedef) Kind() NodeKind                       { return KindTypedef }
func (n *Typedef) Span() Span                           { return n.Sp }
func (n *Typedef) Clone() CCN                           { return &Typedef{Sp: n.Sp, Name: n.Name, Type: cloneNode(n.Type)} }
func (n *Typedef) String() string                       { return "typedef " + n.Type.String() + " " + n.Name + ";" }

type StructField struct {
	Sp   Span
	Name string
	Type CCN
}

func NewStructField(name string, typ CCN, sp Span) *StructField {
	return &StructField{Sp: sp, Name: name, Type: typ}
}
func (n *StructField) Kind() NodeKind { return KindStructField }
func (n *StructField) Span() Span     { return n.Sp }
func (n *StructField) Clone() CCN {
	return &StructField{Sp: n.Sp, Name: n.Name, Type: cloneNode(n.Type)}
}
func (n *StructField) String() string { return n.Type.String() + " " + n.Name + ";" }

type StructDecl struct {
	Sp      Span
	Name    string
	Fields  []*StructField
	IsUnion bool
}

func NewStructDecl(name string, fields []*StructField, isUnion bool, sp Span) *StructDecl {
	return &StructDecl{Sp: sp, Name: name, Fields: fields, IsUnion: isUnion}
}
func (n *StructDecl) Kind() NodeKind { return KindStructDecl }
func (n *StructDecl) Span() Span     { return n.Sp }
func (n *StructDecl) Clone() CCN {
	return &StructDecl{Sp: n.Sp, Name: n.Name, Fields: cloneList(n.Fields), IsUnion: n.IsUnion}
}
func (n *StructDecl) String() string {
	kw := "struct"
	if n.IsUnion {
		kw = "union"
	}
	var fields []string
	for _, f := range n.Fields {
		fields = append(fields, f.String())
	}
	return kw + " " + n.Name + " { " + strings.Join(fields, " ") + " };"
}

type EnumValue struct {
	Sp    Span
	Name  string
	Value CCN // nil if implicit
}

func NewEnumValue(name string, value CCN, sp Span) *EnumValue { return &EnumValue{Sp: sp, Name: name, Value: value} }
func (n *EnumValue) Kind() NodeKind                            { return KindEnumValue }
func (n *EnumValue) Span() Span                                { return n.Sp }
func (n *EnumValue) Clone() CCN                                { return &EnumValue{Sp: n.Sp, Name: n.Name, Value: cloneNode(n.Value)} }
func (n *EnumValue) String() string {
	if n.Value == nil {
		return n.Name
	}
	return n.Name + " = " + n.Value.String()
}

type EnumDecl struct {
	Sp     Span
	Name   string
	Values []*EnumValue
}

func NewEnumDecl(name string, values []*EnumValue, sp Span) *EnumDecl {
	return &EnumDecl{Sp: sp, Name: name, Values: values}
}
func (n *EnumDecl) Kind() NodeKind { return KindEnumDecl }
func (n *EnumDecl) Span() Span     { return n.Sp }
func (n *EnumDecl) Clone() CCN     { return &EnumDecl{Sp: n.Sp, Name: n.Name, Values: cloneList(n.Values)} }
func (n *EnumDecl) String() string {
	var values []string
	for _, v := range n.Values {
		values = append(values, v.String())
	}
	return "enum " + n.Name + " { " + strings.Join(values, ", ") + " };"
}
