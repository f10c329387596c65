package namespace

import (
	"fmt"

	"github.com/dmbarbour/glas/pkg/value"
)

// Reserved AST tag labels.
const (
	tagTL     = "t"
	tagFn     = "f"
	tagEnv    = "e"
	tagBind   = "b"
	tagAnno   = "a"
	tagIfdef  = "c"
	tagFix    = "y"
	tagData   = "d"
	tagName   = "n" // leaf: a bare name reference, resolved in env
	tagApply  = "@" // application: pair (OpAST, ArgAST)
)

// decodeTag reads a single-label tagged variant: AST nodes are ordinary
// values with tagged variants, represented the same way pkg/value.Dict
// represents any single-key record — a dict with exactly one entry,
// whose key is the tag.
func decodeTag(v *value.Value) (tag string, payload *value.Value, ok bool) {
	entries := value.DictEntries(v)
	if len(entries) != 1 {
		return "", nil, false
	}
	return entries[0].Key, entries[0].Val, true
}

// Tag builds a tagged AST node {tag: payload}.
func Tag(tag string, payload *value.Value) *value.Value {
	return value.DictInsert(value.Leaf(), tag, payload)
}

// DataNode builds a d:val embedded-data AST leaf.
func DataNode(v *value.Value) *value.Value { return Tag(tagData, v) }

// NameNode builds a bare-name reference AST leaf.
func NameNode(name string) *value.Value {
	return Tag(tagName, value.NewBinary([]byte(name)))
}

// ApplyNode builds an application AST node (op applied to arg).
func ApplyNode(op, arg *value.Value) *value.Value {
	return Tag(tagApply, value.Pair(op, arg))
}

// Eval evaluates ast in env, returning the Definition it reduces to. f:
// is the one tag that does not force its own payload:
// it binds body as a ProgDef closure (self-referential, so the bound
// name can recurse) and returns that ProgDef without evaluating body
// itself; body is only forced later, where a concrete Definition is
// actually required (an application's callee, e: reifying, or
// pkg/thread's call()). Every other tag evaluates its body eagerly.
func Eval(ast *value.Value, env *Env) (Definition, error) {
	tag, payload, ok := decodeTag(ast)
	if !ok {
		return nil, fmt.Errorf("namespace: malformed AST node (not a single-tag variant)")
	}
	switch tag {
	case tagData:
		return DataDef{Value: payload}, nil

	case tagName:
		name, ok := value.ToBytes(payload)
		if !ok {
			return nil, fmt.Errorf("namespace: n: node payload is not a name")
		}
		d, ok := env.Resolve(string(name))
		if !ok {
			return nil, fmt.Errorf("namespace: undefined name %q", name)
		}
		return d, nil

	case tagTL:
		tlAST, body, ok := value.Un(payload)
		if !ok {
			return nil, fmt.Errorf("namespace: t: node payload is not a pair")
		}
		tl, err := DecodeTL(tlAST)
		if err != nil {
			return nil, err
		}
		return Eval(body, env.WithTL(tl))

	case tagFn:
		nameV, body, ok := value.Un(payload)
		if !ok {
			return nil, fmt.Errorf("namespace: f: node payload is not a pair")
		}
		nameBytes, ok := value.ToBytes(nameV)
		if !ok {
			return nil, fmt.Errorf("namespace: f: name is not a string")
		}
		name := string(nameBytes)
		newEnv := env.WithProg(name, body, nil)
		d, ok := newEnv.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("namespace: f: failed to resolve its own binding %q", name)
		}
		return d, nil

	case tagEnv:
		return env.Reify(), nil

	case tagBind:
		prefixV, body, ok := value.Un(payload)
		if !ok {
			return nil, fmt.Errorf("namespace: b: node payload is not a pair")
		}
		prefixBytes, ok := value.ToBytes(prefixV)
		if !ok {
			return nil, fmt.Errorf("namespace: b: prefix is not a string")
		}
		bodyDef, err := Eval(body, env)
		if err != nil {
			return nil, err
		}
		reified, ok := bodyDef.(ReifiedEnv)
		if !ok {
			return nil, fmt.Errorf("namespace: b: body did not reify to an environment")
		}
		return env.WithPrefixBindings(string(prefixBytes), reified).Reify(), nil

	case tagAnno:
		_, body, ok := value.Un(payload)
		if !ok {
			return nil, fmt.Errorf("namespace: a: node payload is not a pair")
		}
		return Eval(body, env)

	case tagIfdef:
		nameAST, branches, ok := value.Un(payload)
		if !ok {
			return nil, fmt.Errorf("namespace: c: node payload is not a pair")
		}
		nameBytes, ok := value.ToBytes(nameAST)
		if !ok {
			return nil, fmt.Errorf("namespace: c: name is not a string")
		}
		thenAST, elseAST, ok := value.Un(branches)
		if !ok {
			return nil, fmt.Errorf("namespace: c: branches is not a pair")
		}
		if _, defined := env.Resolve(string(nameBytes)); defined {
			return Eval(thenAST, env)
		}
		return Eval(elseAST, env)

	case tagFix:
		// y:body is a fixed point: body is evaluated in an
		// environment where the name "self" already resolves to
		// the fixed point itself, tying the recursive knot lazily
		// via ProgDef's closure-over-env rather than eager
		// self-substitution.
		fix := env.WithProg("self", payload, nil)
		return Eval(payload, fix)

	case tagApply:
		opAST, argAST, ok := value.Un(payload)
		if !ok {
			return nil, fmt.Errorf("namespace: @ node payload is not a pair")
		}
		opDef, err := Eval(opAST, env)
		if err != nil {
			return nil, err
		}
		prog, ok := opDef.(ProgDef)
		if !ok {
			return nil, fmt.Errorf("namespace: application operator did not reduce to a program")
		}
		argDef, err := Eval(argAST, env)
		if err != nil {
			return nil, err
		}
		argReified, ok := argDef.(ReifiedEnv)
		if !ok {
			return nil, fmt.Errorf("namespace: application argument did not reduce to an environment")
		}
		callEnv := prog.Env
		for name, d := range argReified.Members {
			callEnv = bindResolved(callEnv, name, d)
		}
		return Eval(prog.AST, callEnv)

	default:
		return nil, fmt.Errorf("namespace: unrecognized AST tag %q", tag)
	}
}

// bindResolved installs an already-resolved Definition directly,
// bypassing WithProg/WithData's AST-shaped constructors, for binding an
// application argument's reified members into a callee's call
// environment.
func bindResolved(e *Env, name string, d Definition) *Env {
	n := e.clone()
	n.defs[name] = d
	return n
}
