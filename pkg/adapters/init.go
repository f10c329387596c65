package adapters

import (
	"context"

	"github.com/dmbarbour/glas/pkg/log"
	"github.com/dmbarbour/glas/pkg/namespace"
	"github.com/dmbarbour/glas/pkg/value"
)

// DefaultInit is the result of InitDefault: an Env with primitives and
// builtin compilers bound under PrimPrefix, a Loader for reading
// program source, and whatever RuntimeConfig was discovered alongside
// the glas configuration path.
type DefaultInit struct {
	Env        *namespace.Env
	Loader     *Loader
	ConfigPath string
	Config     RuntimeConfig
}

// PrimPrefix is the conventional bound-primitive prefix, % by
// convention; %env. mirrors conf.env.
const PrimPrefix = "%"

// InitDefault builds the default-init environment: primitives and
// builtin compilers bound at PrimPrefix over a fresh root Env, a
// filesystem Loader rooted at origin, and the RuntimeConfig parsed as
// YAML from the path DiscoverConfigPath returns (if any). cache may be
// nil.
func InitDefault(origin string, cache *namespace.Cache, lg *log.Logger) (*DefaultInit, error) {
	if lg == nil {
		lg = log.Discard()
	}
	env := namespace.NewRootEnv(cache)
	env = LoadPrims(env, PrimPrefix)
	env = LoadBuiltinCompilers(env, PrimPrefix+"compile")

	confPath := DiscoverConfigPath()
	cfg, err := LoadRuntimeConfig(confPath)
	if err != nil {
		return nil, err
	}
	if cfg.Workers > 0 {
		env = env.WithData(PrimPrefix+"env.workers", value.PushInt(int64(cfg.Workers)))
	}

	loader := NewLoader(origin, lg)

	return &DefaultInit{Env: env, Loader: loader, ConfigPath: confPath, Config: cfg}, nil
}

// LoadProgram resolves uri through d.Loader, compiles it with the
// builtin compiler registered for its extension, and returns an Env
// with the compiled Value bound at uri (ready for the caller to further
// bind it, e.g. as a ProgDef's AST).
func (d *DefaultInit) LoadProgram(ctx context.Context, uri string) (*namespace.Env, error) {
	data, err := d.Loader.LoadBinary(ctx, uri)
	if err != nil {
		return nil, err
	}
	c, ok := CompilerFor(uri)
	if !ok {
		return nil, ErrNotFound
	}
	v, err := c(data)
	if err != nil {
		return nil, err
	}
	return d.Env.WithData(uri, v), nil
}
