package cc

import (
	"fmt"
	"strings"
)

// RunChannelPair rewrites `channel_pair(&tx, &rx)` calls, resolving
// both declarations backwards from the call site to extract element
// type, capacity, direction, mode, backpressure, and topology, and
// checking the two declarations agree on every attribute.
func RunChannelPair(specs map[string]channelSpec, src string) (string, passStatus, error) {
	const kw = "channel_pair"
	if !strings.Contains(src, kw) {
		return src, statusUnchanged, nil
	}
	out := &StringBuilder{}
	pos := 0
	changed := false
	for {
		idx := indexKeyword(src, pos, kw)
		if idx < 0 {
			out.WriteString(src[pos:])
			break
		}
		out.WriteString(src[pos:idx])
		open := SkipSpaceAndComments(src, idx+len(kw))
		if open >= len(src) || src[open] != '(' {
			out.WriteString(kw)
			pos = idx + len(kw)
			continue
		}
		close, err := MatchParen(src, open)
		if err != nil {
			return src, statusError, NewSyntaxError("unterminated channel_pair(...)", spanAt(src, idx))
		}
		args := strings.SplitN(src[open+1:close], ",", 2)
		if len(args) != 2 {
			return src, statusError, NewSyntaxError("channel_pair requires exactly two arguments", spanAt(src, idx))
		}
		txArg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args[0]), "&"))
		rxArg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args[1]), "&"))
		txSpec, txOK := lookupDeclSpec(src, idx, txArg, specs)
		rxSpec, rxOK := lookupDeclSpec(src, idx, rxArg, specs)
		if !txOK || !rxOK {
			return src, statusError, NewSyntaxError("channel_pair arguments must reference declared channel handles", spanAt(src, idx))
		}
		if mismatch := compareChannelSpecs(txSpec, rxSpec); mismatch != "" {
			return src, statusError, NewSyntaxError("channel_pair declarations disagree: "+mismatch, spanAt(src, idx))
		}

		isAssignmentContext := precedingNonSpaceByte(src, idx) == '='
		call := renderChannelPairCall(txSpec, txArg, rxArg)
		if isAssignmentContext {
			out.WriteString(call)
		} else {
			out.WriteString(fmt.Sprintf("do { int __cc_cp_err = %s; if (__cc_cp_err) abort(); } while(0)", call))
		}
		changed = true
		pos = close + 1
	}
	if !changed {
		return src, statusUnchanged, nil
	}
	return out.String(), statusChanged, nil
}

func renderChannelPairCall(spec channelSpec, txArg, rxArg string) string {
	mode := "CC_CHAN_MODE_BLOCK"
	if spec.Mode == "async" {
		mode = "CC_CHAN_MODE_ASYNC"
	}
	bp := "0"
	switch spec.Backpressure {
	case "drop":
		bp = "CC_CHAN_BP_DROP"
	case "dropold":
		bp = "CC_CHAN_BP_DROP_OLD"
	case "dropnew":
		bp = "CC_CHAN_BP_DROP_NEW"
	}
	topo := "CC_CHAN_TOPO_DEFAULT"
	switch spec.Topology {
	case "1:1":
		topo = "CC_CHAN_TOPO_1_1"
	case "1:N":
		topo = "CC_CHAN_TOPO_1_N"
	case "N:1":
		topo = "CC_CHAN_TOPO_N_1"
	case "N:N":
		topo = "CC_CHAN_TOPO_N_N"
	}
	cap := spec.Capacity
	if cap == "" {
		cap = "0"
	}
	elem := spec.ElemType
	if elem == "" {
		elem = "void"
	}
	return fmt.Sprintf("cc_chan_pair_create_full(%s, %s, %s, sizeof(%s), 0, %s, &%s, &%s)",
		cap, mode, bp, elem, topo, txArg, rxArg)
}

// lookupDeclSpec finds the channelSpec recorded for a declared channel
// handle variable, populated during channel-handle-type rewriting.
func lookupDeclSpec(src string, pos int, name string, specs map[string]channelSpec) (channelSpec, bool) {
	spec, ok := specs[name]
	return spec, ok
}

func compareChannelSpecs(a, b channelSpec) string {
	if a.Capacity != b.Capacity {
		return "capacity mismatch"
	}
	if a.Mode != b.Mode {
		return "mode mismatch"
	}
	if a.Backpressure != b.Backpressure {
		return "backpressure mismatch"
	}
	if a.Topology != b.Topology {
		return "topology mismatch"
	}
	if a.Direction == b.Direction {
		return "direction mismatch: both declarations use the same direction"
	}
	return ""
}

func precedingNonSpaceByte(src string, pos int) byte {
	i := pos - 1
	for i >= 0 && IsSpace(rune(src[i])) {
		i--
	}
	if i < 0 {
		return 0
	}
	return src[i]
}
