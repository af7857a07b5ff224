package cc

import (
	"os"
	"sort"
	"strings"
)

// CompileResult is everything CompileFile/CompileString hand back:
// the final lowered C source, ready to feed to a real C compiler, and
// every diagnostic collected along the way (§7: a translation unit
// collects all its diagnostics rather than stopping at the first).
type CompileResult struct {
	Output      string
	Diagnostics *Diagnostics
}

// CompileFile reads path and runs it through CompileString.
func CompileFile(parser ParserAdapter, cfg *Config, path string) (*CompileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("can't read source file: "+err.Error(), Span{})
	}
	return CompileString(parser, cfg, string(data), path)
}

// CompileString runs the full §4.7 pass scheduler over one in-memory
// translation unit:
//
//  1. inject #line directives
//  2. parse to a stub stream
//  3. build the AST, publish the File node
//  4. AST passes: UFCS
//  5. text passes, applied in fixed order
//  6. re-parse the rewritten source with a runtime prelude injected
//  7. async state-machine rewrite
//  8. return the final text
//
// Any pass returning an error stops the pipeline for this translation
// unit; every diagnostic produced up to that point is still returned.
func CompileString(parser ParserAdapter, cfg *Config, source, filename string) (*CompileResult, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	diags := NewDiagnostics()
	fid := FileID(0)

	fail := func(err error) (*CompileResult, error) {
		diags.ReportError(err, fid)
		return &CompileResult{Diagnostics: diags}, err
	}

	// 1. #line injection
	text := PreprocessSimple(source, filename)

	// 2. first stub parse
	root, err := parser.Parse([]byte(text), filename, filename)
	if err != nil {
		return fail(err)
	}
	defer root.Free()

	// 3. build AST
	astFile := BuildFile(root, filename)

	// 4. UFCS AST pass
	if cfg.GetBool("passes.ufcs") {
		astFile = RunUFCS(astFile, defaultReceiverTypeNamer).(*File)
	}
	text = astFile.String()

	// 5. text passes, fixed order
	text, err = runTextPasses(cfg, diags, fid, text)
	if err != nil {
		return fail(err)
	}

	if !cfg.GetBool("passes.async") {
		return &CompileResult{Output: text, Diagnostics: diags}, nil
	}

	// 6. re-parse with runtime prelude injected
	withPrelude := InjectPrelude(text)
	root2, err := parser.Parse([]byte(withPrelude), filename, filename)
	if err != nil {
		return fail(err)
	}
	defer root2.Free()

	// 7. async state-machine rewrite
	lowered, status, err := RunAsyncRewrite(cfg, root2)
	if err != nil {
		return fail(err)
	}
	if status == statusUnchanged {
		lowered = withPrelude
	}

	// 8. final text
	return &CompileResult{Output: lowered, Diagnostics: diags}, nil
}

// runTextPasses applies every §4.5/§4.6-adjacent text-level pass in
// the scheduler's fixed order, threading a shared passContext (for
// with_deadline/@match's per-run id counters) and a TypeRegistries
// (so the optional/result passes can register mangled type names for
// each other and for the channel-handle pass).
func runTextPasses(cfg *Config, diags *Diagnostics, fid FileID, text string) (string, error) {
	ctx := &passContext{}
	reg := NewTypeRegistries()
	var chanSpecs map[string]channelSpec

	type step struct {
		key string // Config toggle gating this step
		run func(string) (string, passStatus, error)
	}

	steps := []step{
		{"passes.with_deadline", func(s string) (string, passStatus, error) { return RunWithDeadline(ctx, s) }},
		{"passes.channel_types", func(s string) (string, passStatus, error) {
			out, found, status, err := RunChannelHandleTypes(s)
			chanSpecs = found
			return out, status, err
		}},
		{"passes.channel_pair", func(s string) (string, passStatus, error) { return RunChannelPair(chanSpecs, s) }},
		{"passes.match", func(s string) (string, passStatus, error) { return RunMatch(ctx, s) }},
		{"passes.defer", func(s string) (string, passStatus, error) { return RunDefer(cfg, s) }},
		{"passes.slice_types", func(s string) (string, passStatus, error) { return RunSliceTypes(s) }},
		{"passes.optional_types", func(s string) (string, passStatus, error) { return RunOptionalTypes(reg, s) }},
		{"passes.result_types", func(s string) (string, passStatus, error) { return RunResultTypes(reg, s) }},
		{"passes.try_expr", func(s string) (string, passStatus, error) { return RunTry(s) }},
		{"passes.result_ctor", func(s string) (string, passStatus, error) { return RunResultCtor(s) }},
		{"passes.optional_unwrap", func(s string) (string, passStatus, error) { return RunOptionalUnwrap(s) }},
		{"passes.closure_call", func(s string) (string, passStatus, error) { return RunClosureCallTyping(s) }},
	}

	for _, st := range steps {
		if !cfg.GetBool(st.key) {
			continue
		}
		out, status, err := st.run(text)
		if err != nil {
			diags.ReportError(err, fid)
			return text, err
		}
		if status == statusChanged {
			text = out
		}
	}

	text = RenderTypeDecls(reg) + text
	return text, nil
}

// defaultReceiverTypeNamer resolves a UFCS receiver's static type only
// when the receiver expression carries its own type annotation inline
// (e.g. a Cast); a real symbol table is out of scope (§1), so receiver
// expressions without one simply don't get their type name prefixed
// and UFCS falls back to lowering against the bare method name.
func defaultReceiverTypeNamer(recv CCN) (string, bool) {
	switch t := recv.(type) {
	case *Cast:
		if tn, ok := t.Type.(*TypeName); ok {
			return tn.Name, false
		}
		if pt, ok := t.Type.(*PointerType); ok {
			if tn, ok := pt.Elem.(*TypeName); ok {
				return tn.Name, true
			}
		}
	case *Unary:
		if t.Op == OpDeref {
			if name, _ := defaultReceiverTypeNamer(t.Expr); name != "" {
				return name, false
			}
		}
	}
	return "", false
}

// RenderTypeDecls emits one struct/function-pair declaration per
// result or optional type actually registered while lowering sigil
// types (§6), replacing the placeholder macros a static prelude can't
// express: each CCResult_<Ok>_<Err> needs its own cc_ok_<Ok>_<Err> /
// cc_err_<Ok>_<Err> constructors, and each CCOptional_<T> needs its
// own struct shape.
func RenderTypeDecls(reg *TypeRegistries) string {
	if len(reg.Results) == 0 && len(reg.Optionals) == 0 {
		return ""
	}
	var b strings.Builder
	resultKeys := make([]string, 0, len(reg.Results))
	for key := range reg.Results {
		resultKeys = append(resultKeys, key)
	}
	sort.Strings(resultKeys)
	for _, key := range resultKeys {
		pair := reg.Results[key]
		b.WriteString("typedef struct { int __ok; union { " + pair.RawOk + " ok; " + pair.RawErr + " err; } __v; } CCResult_" + key + ";\n")
		b.WriteString("static inline CCResult_" + key + " cc_ok_" + key + "(" + pair.RawOk + " v) { CCResult_" + key + " r; r.__ok = 1; r.__v.ok = v; return r; }\n")
		b.WriteString("static inline CCResult_" + key + " cc_err_" + key + "(" + pair.RawErr + " e) { CCResult_" + key + " r; r.__ok = 0; r.__v.err = e; return r; }\n")
	}
	optKeys := make([]string, 0, len(reg.Optionals))
	for mangled := range reg.Optionals {
		optKeys = append(optKeys, mangled)
	}
	sort.Strings(optKeys)
	for _, mangled := range optKeys {
		b.WriteString("typedef struct { int __has; " + reg.Optionals[mangled] + " value; } CCOptional_" + mangled + ";\n")
	}
	b.WriteString("\n")
	return b.String()
}
