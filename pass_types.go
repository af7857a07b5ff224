package cc

import (
	"strings"
)

// TypeRegistries tracks the per-translation-unit result and optional
// type pairs discovered while lowering sigil types, deduplicated by
// mangled key with built-ins excluded.
type TypeRegistries struct {
	Results   map[string]ResultPair
	Optionals map[string]string // mangled -> raw
}

type ResultPair struct {
	MangledOk, MangledErr string
	RawOk, RawErr         string
}

func NewTypeRegistries() *TypeRegistries {
	return &TypeRegistries{Results: make(map[string]ResultPair), Optionals: make(map[string]string)}
}

var builtinResultPairs = map[string]bool{
	"size_t_CCIoError": true,
}

func (r *TypeRegistries) addResult(rawOk, rawErr string) {
	mOk := mangleType(rawOk)
	mErr := mangleType(rawErr)
	key := mOk + "_" + mErr
	if builtinResultPairs[key] || rawErr == "CCError" {
		return
	}
	if _, exists := r.Results[key]; exists {
		return
	}
	r.Results[key] = ResultPair{MangledOk: mOk, MangledErr: mErr, RawOk: rawOk, RawErr: rawErr}
}

func (r *TypeRegistries) addOptional(raw string) {
	m := mangleType(raw)
	if _, exists := r.Optionals[m]; !exists {
		r.Optionals[m] = raw
	}
}

// mangleType maps a C type spelling into an identifier-safe mangled
// form: whitespace and '*' become '_' and "ptr", with a handful of
// known shortcuts.
func mangleType(raw string) string {
	raw = strings.TrimSpace(raw)
	if shortcut, ok := typeMangleShortcuts[raw]; ok {
		return shortcut
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '*':
			b.WriteString("ptr")
		case ' ', '\t', '\n':
			b.WriteByte('_')
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

var typeMangleShortcuts = map[string]string{
	"IoError": "CCIoError",
}

// RunSliceTypes rewrites `T[:]` to `CCSlice` and `T[:!]` to
// `CCSliceUnique`, preserving leading const/volatile qualifiers.
func RunSliceTypes(src string) (string, passStatus, error) {
	out := &StringBuilder{}
	changed := false
	i := 0
	for i < len(src) {
		if classify(src, i, scanCode) != scanCode {
			out.WriteByte(src[i])
			i++
			continue
		}
		if src[i] == '[' {
			j := SkipSpaceAndComments(src, i+1)
			if j < len(src) && src[j] == ':' {
				k := j + 1
				unique := false
				if k < len(src) && src[k] == '!' {
					unique = true
					k++
				}
				k2 := SkipSpaceAndComments(src, k)
				if k2 < len(src) && src[k2] == ']' {
					// Drop the element type preceding '[' (CCSlice carries
					// no element type of its own); only a leading
					// const/volatile qualifier survives (§4.5: "T[:] →
					// [leading const/volatile] CCSlice").
					written := out.String()
					elemType := lastTypeToken(written)
					out = &StringBuilder{}
					out.WriteString(written[:len(written)-len(elemType)])
					if unique {
						out.WriteString("CCSliceUnique")
					} else {
						out.WriteString("CCSlice")
					}
					changed = true
					i = k2 + 1
					continue
				}
				return src, statusError, NewSyntaxError("unterminated slice type", spanAt(src, i))
			}
		}
		out.WriteByte(src[i])
		i++
	}
	if !changed {
		return src, statusUnchanged, nil
	}
	return out.String(), statusChanged, nil
}

// RunOptionalTypes rewrites `T?` to `__CC_OPTIONAL(T)` and registers T.
func RunOptionalTypes(reg *TypeRegistries, src string) (string, passStatus, error) {
	out := &StringBuilder{}
	changed := false
	i := 0
	for i < len(src) {
		if classify(src, i, scanCode) != scanCode {
			out.WriteByte(src[i])
			i++
			continue
		}
		if src[i] == '?' && i > 0 {
			typ := lastTypeToken(src[:i])
			if typ != "" {
				// trim the already-written type token and rewrap it
				trimmed := out.String()
				trimmed = trimmed[:len(trimmed)-len(typ)]
				out = &StringBuilder{}
				out.WriteString(trimmed)
				out.WriteString("__CC_OPTIONAL(" + typ + ")")
				reg.addOptional(typ)
				changed = true
				i++
				continue
			}
		}
		out.WriteByte(src[i])
		i++
	}
	if !changed {
		return src, statusUnchanged, nil
	}
	return out.String(), statusChanged, nil
}

func lastTypeToken(prefix string) string {
	i := len(prefix)
	for i > 0 && IsIdentCont(rune(prefix[i-1])) {
		i--
	}
	if i == len(prefix) {
		return ""
	}
	return prefix[i:]
}

// RunResultTypes rewrites `T!>(E)`, `CCRes(T,E)`, `CCResPtr(T,E)` into
// `CCResult_<mT>_<mE>` and registers the pair. Existing
// `CCResult_*_*` identifiers populate the registry without rewriting.
func RunResultTypes(reg *TypeRegistries, src string) (string, passStatus, error) {
	changed := false
	out := &StringBuilder{}
	i := 0
	for i < len(src) {
		if classify(src, i, scanCode) != scanCode {
			out.WriteByte(src[i])
			i++
			continue
		}
		switch {
		case strings.HasPrefix(src[i:], "CCResult_") && (i == 0 || !IsIdentCont(rune(src[i-1]))):
			end := i + len("CCResult_")
			for end < len(src) && (IsIdentCont(rune(src[end]))) {
				end++
			}
			name := src[i:end]
			parts := strings.SplitN(strings.TrimPrefix(name, "CCResult_"), "_", 2)
			if len(parts) == 2 {
				reg.addResult(parts[0], parts[1])
			}
			out.WriteString(name)
			i = end
			continue

		case strings.HasPrefix(src[i:], "CCRes(") || strings.HasPrefix(src[i:], "CCResPtr("):
			ptrForm := strings.HasPrefix(src[i:], "CCResPtr(")
			open := i + strings.IndexByte(src[i:], '(')
			close, err := MatchParen(src, open)
			if err != nil {
				return src, statusError, NewSyntaxError("unterminated CCRes(...)", spanAt(src, i))
			}
			args := strings.SplitN(src[open+1:close], ",", 2)
			if len(args) != 2 {
				return src, statusError, NewSyntaxError("CCRes/CCResPtr requires two type arguments", spanAt(src, i))
			}
			okType, errType := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			if ptrForm {
				okType += "*"
			}
			reg.addResult(okType, errType)
			out.WriteString("CCResult_" + mangleType(okType) + "_" + mangleType(errType))
			changed = true
			i = close + 1
			continue

		case src[i] == '!' && i+1 < len(src) && src[i+1] == '>':
			typ := lastTypeToken(out.String())
			open := SkipSpaceAndComments(src, i+2)
			if open >= len(src) || src[open] != '(' {
				out.WriteByte(src[i])
				i++
				continue
			}
			close, err := MatchParen(src, open)
			if err != nil {
				return src, statusError, NewSyntaxError("unterminated T!>(E)", spanAt(src, i))
			}
			errType := strings.TrimSpace(src[open+1 : close])
			okIsPtr := strings.HasSuffix(typ, "*")
			reg.addResult(typ, errType)
			trimmed := out.String()
			trimmed = trimmed[:len(trimmed)-len(typ)]
			out = &StringBuilder{}
			out.WriteString(trimmed)
			out.WriteString("CCResult_" + mangleType(typ) + "_" + mangleType(errType))
			_ = okIsPtr
			changed = true
			i = close + 1
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	if !changed {
		return src, statusUnchanged, nil
	}
	return out.String(), statusChanged, nil
}

// channelDirection and related option tokens recognised inside a
// channel handle bracket `[ElemType ~ capacity , direction (>|<) , options… ]`.
type channelSpec struct {
	ElemType     string
	Capacity     string
	Direction    byte // '>' tx, '<' rx
	Mode         string
	Backpressure string
	Topology     string
}

// RunChannelHandleTypes rewrites `[ElemType ~ capacity , direction ,
// options… ]` into `CCChanTx`/`CCChanRx`, keyed in the returned map by
// the variable name the bracket declares (the next identifier up to
// the statement terminator), so `channel_pair` can later resolve both
// declarations by name.
func RunChannelHandleTypes(src string) (string, map[string]channelSpec, passStatus, error) {
	specs := make(map[string]channelSpec)
	out := &StringBuilder{}
	changed := false
	i := 0
	for i < len(src) {
		if classify(src, i, scanCode) != scanCode {
			out.WriteByte(src[i])
			i++
			continue
		}
		if src[i] == '[' && looksLikeChannelHandle(src, i) {
			close, err := MatchBracket(src, i)
			if err != nil {
				return src, nil, statusError, NewSyntaxError("unterminated channel handle", spanAt(src, i))
			}
			inner := src[i+1 : close]
			spec, dir, perr := parseChannelSpec(inner, i)
			if perr != nil {
				return src, nil, statusError, perr
			}
			name := "CCChanRx"
			if dir == '>' {
				name = "CCChanTx"
			}
			varName := nextIdentifier(src, close+1)
			if varName != "" {
				specs[varName] = spec
			}
			out.WriteString(name)
			changed = true
			i = close + 1
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	if !changed {
		return src, specs, statusUnchanged, nil
	}
	return out.String(), specs, statusChanged, nil
}

// looksLikeChannelHandle reports whether the bracket starting at i
// contains a top-level '~' before its matching ']', distinguishing a
// channel handle from an ordinary array-size bracket.
func looksLikeChannelHandle(src string, open int) bool {
	close, err := MatchBracket(src, open)
	if err != nil {
		return false
	}
	return strings.ContainsRune(src[open+1:close], '~')
}

func nextIdentifier(src string, pos int) string {
	pos = SkipSpaceAndComments(src, pos)
	start := pos
	for pos < len(src) && IsIdentCont(rune(src[pos])) {
		pos++
	}
	return src[start:pos]
}

func parseChannelSpec(inner string, anchor int) (channelSpec, byte, error) {
	tilde := strings.IndexByte(inner, '~')
	if tilde < 0 {
		return channelSpec{}, 0, NewSyntaxError("channel handle missing '~'", spanAt(inner, anchor))
	}
	elemType := strings.TrimSpace(inner[:tilde])
	inner = inner[tilde+1:]

	parts := strings.Split(inner, ",")
	if len(parts) == 0 {
		return channelSpec{}, 0, NewSyntaxError("empty channel handle", spanAt(inner, anchor))
	}
	first := strings.TrimSpace(parts[0])
	var capacity string
	var dir byte
	if len(first) > 0 && (first[len(first)-1] == '>' || first[len(first)-1] == '<') {
		dir = first[len(first)-1]
		capacity = strings.TrimSpace(first[:len(first)-1])
	} else {
		return channelSpec{}, 0, NewSyntaxError("channel handle missing direction marker", spanAt(inner, anchor))
	}
	spec := channelSpec{ElemType: elemType, Capacity: capacity, Direction: dir}
	for _, p := range parts[1:] {
		tok := strings.TrimSpace(p)
		switch tok {
		case "sync", "async":
			spec.Mode = tok
		case "drop", "dropold", "dropnew":
			spec.Backpressure = tok
		case "1:1", "1:N", "N:1", "N:N":
			spec.Topology = tok
		default:
			if tok != "" {
				return channelSpec{}, 0, NewUnsupportedError("unknown channel option token: "+tok, "recognised options are sync|async, drop|dropold|dropnew, {1|N}:{1|N}", spanAt(inner, anchor))
			}
		}
	}
	return spec, dir, nil
}
