package parser

import (
	"fmt"
	"strings"

	"github.com/calyx-lang/calyx/internal/ast"
)

// prototype is one accepted call signature: a body over the parameter
// sequence alphabet plus a declared return kind (overload mode only).
type prototype struct {
	body string
	ret  ast.ValueKind
}

// TypeChecker validates an observed call-site argument-type signature
// against a function's declared prototype set. It is constructed per
// call site from the function's raw prototype list.
type TypeChecker struct {
	protos    []prototype
	allowZero bool
	overload  bool
}

// Mismatch describes the best failing comparison for diagnostics.
type Mismatch struct {
	ProtoIndex int
	DiffIndex  int
	Expected   byte
}

// NewTypeChecker parses a pipe-delimited prototype list. In overload
// mode each prototype may carry a "T:" (numeric) or "S:" (string)
// return prefix. Construction fails on malformed bodies, return
// prefixes outside overload mode, the ambiguous "?*" / "**"
// adjacencies, and duplicate bodies.
func NewTypeChecker(raw string, overloadMode bool) (*TypeChecker, error) {
	tc := &TypeChecker{overload: overloadMode}
	if raw == "" {
		return tc, nil
	}

	seen := make(map[string]bool)
	for _, tok := range strings.Split(raw, "|") {
		ret := ast.ValueScalar
		body := tok
		if len(tok) >= 2 && tok[1] == ':' {
			if !overloadMode {
				return nil, fmt.Errorf("typechecker: return prefix %q only legal for overloaded functions", tok[:2])
			}
			switch tok[0] {
			case 'T':
				ret = ast.ValueScalar
			case 'S':
				ret = ast.ValueString
			default:
				return nil, fmt.Errorf("typechecker: invalid return prefix %q", tok[:2])
			}
			body = tok[2:]
		}

		if err := validateBody(body); err != nil {
			return nil, err
		}
		if seen[body] {
			return nil, fmt.Errorf("typechecker: duplicate prototype %q", body)
		}
		seen[body] = true

		if body == "Z" {
			tc.allowZero = true
		}
		tc.protos = append(tc.protos, prototype{body: body, ret: ret})
	}
	return tc, nil
}

// validateBody enforces ^(Z|[STV*?]+)$ with no "?*" or "**" adjacency.
func validateBody(body string) error {
	if body == "" {
		return fmt.Errorf("typechecker: empty prototype body")
	}
	if body == "Z" {
		return nil
	}
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case 'T', 'S', 'V', '*', '?':
		default:
			return fmt.Errorf("typechecker: invalid character %q in prototype %q", body[i], body)
		}
		if body[i] == '*' && i > 0 && (body[i-1] == '?' || body[i-1] == '*') {
			return fmt.Errorf("typechecker: ambiguous %q adjacency in prototype %q", body[i-1:i+1], body)
		}
	}
	return nil
}

// Verify matches the observed argument-kind sequence (letters from
// {T,S,V}) against the declared prototypes. With no prototypes
// declared any call is accepted with index -1.
func (tc *TypeChecker) Verify(observed string) (int, bool) {
	if len(tc.protos) == 0 {
		return -1, true
	}
	for i, p := range tc.protos {
		if ok, _, _ := matchSeq(p.body, observed, 0, 0); ok {
			return i, true
		}
	}
	return -1, false
}

// BestMismatch returns the diagnostic mismatch after a failed Verify:
// the sole failing prototype when only one is declared, otherwise the
// one whose comparison progressed furthest into the observed sequence.
func (tc *TypeChecker) BestMismatch(observed string) Mismatch {
	best := Mismatch{ProtoIndex: -1, DiffIndex: -1}
	for i, p := range tc.protos {
		ok, di, dc := matchSeq(p.body, observed, 0, 0)
		if ok {
			continue
		}
		if di > best.DiffIndex {
			best = Mismatch{ProtoIndex: i, DiffIndex: di, Expected: dc}
		}
	}
	return best
}

// Explain renders a failed verification as diagnostic text.
func (tc *TypeChecker) Explain(name, observed string) string {
	m := tc.BestMismatch(observed)
	if m.ProtoIndex < 0 {
		return fmt.Sprintf("invalid argument sequence '%s' for function '%s'", observed, name)
	}
	if m.Expected != 0 && m.DiffIndex < len(observed) {
		return fmt.Sprintf(
			"failed parameter type check for function '%s': expected '%c' at argument %d of sequence '%s', prototype '%s'",
			name, m.Expected, m.DiffIndex, observed, tc.protos[m.ProtoIndex].body)
	}
	return fmt.Sprintf(
		"failed parameter type check for function '%s': argument sequence '%s' does not match prototype '%s'",
		name, observed, tc.protos[m.ProtoIndex].body)
}

// AllowZeroParameters reports whether some prototype is the
// zero-argument form Z.
func (tc *TypeChecker) AllowZeroParameters() bool {
	return tc.allowZero
}

// PrototypeCount returns the number of declared prototypes.
func (tc *TypeChecker) PrototypeCount() int {
	return len(tc.protos)
}

// ReturnKind returns the declared return kind of prototype index;
// callers pass the index Verify matched. Out-of-range (including the
// unconstrained -1) yields the default numeric kind.
func (tc *TypeChecker) ReturnKind(index int) ast.ValueKind {
	if index < 0 || index >= len(tc.protos) {
		return ast.ValueScalar
	}
	return tc.protos[index].ret
}

// matchSeq is the wildcard-aware structural matcher. On failure it
// reports the deepest observed index reached and the prototype
// character expected there.
func matchSeq(p, o string, pi, oi int) (bool, int, byte) {
	if p == "Z" {
		if len(o) == 0 {
			return true, 0, 0
		}
		return false, 0, 0
	}

	if pi == len(p) {
		if oi == len(o) {
			return true, 0, 0
		}
		return false, oi, 0
	}

	switch p[pi] {
	case '*':
		// Consumes any run of the remaining argument kinds.
		bestIdx, bestChar := -1, byte(0)
		for k := oi; k <= len(o); k++ {
			ok, di, dc := matchSeq(p, o, pi+1, k)
			if ok {
				return true, 0, 0
			}
			if di > bestIdx {
				bestIdx, bestChar = di, dc
			}
		}
		return false, bestIdx, bestChar
	case '?':
		// One argument of any kind, optionally absent.
		if ok, di1, dc1 := matchSeq(p, o, pi+1, oi); ok {
			return true, 0, 0
		} else if oi < len(o) {
			ok2, di2, dc2 := matchSeq(p, o, pi+1, oi+1)
			if ok2 {
				return true, 0, 0
			}
			if di2 >= di1 {
				return false, di2, dc2
			}
			return false, di1, dc1
		} else {
			return false, di1, dc1
		}
	default:
		if oi < len(o) && o[oi] == p[pi] {
			return matchSeq(p, o, pi+1, oi+1)
		}
		return false, oi, p[pi]
	}
}
