package adapters

import (
	"fmt"

	"github.com/dmbarbour/glas/pkg/namespace"
	"github.com/dmbarbour/glas/pkg/value"
)

// Compiler turns a file's raw bytes into a Value the namespace can bind
// (e.g. as a ProgDef's AST). Keyed by file extension.
type Compiler func(source []byte) (*value.Value, error)

// glob is the compact value glob format: the internal value
// representation itself, serialized. It is exactly the shrub codec.
func globCompiler(source []byte) (*value.Value, error) {
	return value.ShrubDecode(source)
}

// glas is the runtime's own surface syntax. No grammar for it is
// defined here — front-end surface syntaxes are out of scope for this
// package — so this binding exists only to give the extension a slot in
// the registry; it reports that no front-end is available rather than
// silently guessing a grammar.
func glasCompilerUnavailable(source []byte) (*value.Value, error) {
	return nil, fmt.Errorf("adapters: no glas surface-syntax front end is configured")
}

// LoadBuiltinCompilers installs the builtin compiler registry as
// callback definitions under prefix, one ReifiedEnv-visible entry per extension,
// so a loader can look up "<prefix>.glob" / "<prefix>.glas" the same
// way it looks up any other namespace member. Compilers are exposed as
// callbacks taking the source bytes (pushed by the caller as a binary)
// and producing the parsed Value.
func LoadBuiltinCompilers(env *namespace.Env, prefix string) *namespace.Env {
	bind := func(ext string, c Compiler) {
		env = env.WithCallback(prefix+"."+ext, func(hostEnv, callerEnv *namespace.Env, s namespace.Stack) error {
			src, err := s.Pop()
			if err != nil {
				return err
			}
			bytes, ok := value.ToBytes(src)
			if !ok {
				return fmt.Errorf("adapters: compiler input must be a binary")
			}
			out, err := c(bytes)
			if err != nil {
				return err
			}
			s.Push(out)
			return nil
		}, nil, false)
	}
	bind("glob", globCompiler)
	bind("glas", glasCompilerUnavailable)
	return env
}

// CompilerFor looks up the registered Compiler for uri's extension, for
// callers (e.g. cmd/glashost) that want to invoke a compiler directly
// rather than through the namespace.
func CompilerFor(uri string) (Compiler, bool) {
	switch Ext(uri) {
	case "glob":
		return globCompiler, true
	case "glas":
		return glasCompilerUnavailable, true
	default:
		return nil, false
	}
}
