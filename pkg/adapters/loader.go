// Package adapters implements the runtime's external adapters: loader
// virtualization, built-in compiler binding, and the default-init
// sequence. The file loader, the surface-syntax compilers, and
// configuration discovery are treated as collaborators of the core
// runtime rather than part of it — this package is exactly that
// collaborator, implemented against the filesystem and the host
// environment.
package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmbarbour/glas/pkg/log"
)

// VFS lets a client intercept binary loads before they reach the
// filesystem. VirtualizePath decides whether uri should be routed
// through TryLoadBinary at all; returning false falls through to the
// default filesystem loader.
type VFS interface {
	VirtualizePath(uri string) bool
	TryLoadBinary(ctx context.Context, uri string) ([]byte, error)
}

// ErrNotFound is returned by a Loader when uri resolves to nothing.
var ErrNotFound = errors.New("adapters: binary not found")

// Loader resolves a URI to its binary contents, honouring an optional
// VFS intercept. Relative paths inherit virtualization from their
// origin.
type Loader struct {
	vfs    VFS
	log    *log.Logger
	origin string // base directory relative paths resolve against
}

// NewLoader returns a Loader rooted at origin (the directory a relative
// URI resolves against) with no VFS intercept; it reads from the
// filesystem by default.
func NewLoader(origin string, lg *log.Logger) *Loader {
	if lg == nil {
		lg = log.Discard()
	}
	return &Loader{origin: origin, log: lg.Module("adapters.loader")}
}

// Intercept returns a Loader sharing l's origin and log but routing
// through vfs first. A relative URI resolved from this loader carries
// the same origin, so a load triggered from within an already-
// virtualized file still checks vfs first.
func (l *Loader) Intercept(vfs VFS) *Loader {
	return &Loader{vfs: vfs, log: l.log, origin: l.origin}
}

// WithOrigin returns a Loader identical to l but resolving relative
// URIs against origin — used when following a relative reference found
// inside a file loaded from a different directory.
func (l *Loader) WithOrigin(origin string) *Loader {
	return &Loader{vfs: l.vfs, log: l.log, origin: origin}
}

// LoadBinary resolves uri: if a VFS is installed and claims the path,
// its TryLoadBinary is used; otherwise the default filesystem loader
// reads the resolved path directly.
func (l *Loader) LoadBinary(ctx context.Context, uri string) ([]byte, error) {
	if l.vfs != nil && l.vfs.VirtualizePath(uri) {
		return l.vfs.TryLoadBinary(ctx, uri)
	}
	return l.loadBinaryDefault(uri)
}

func (l *Loader) loadBinaryDefault(uri string) ([]byte, error) {
	path := uri
	if !filepath.IsAbs(path) && l.origin != "" {
		path = filepath.Join(l.origin, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Debug("binary not found", "uri", uri, "path", path)
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Ext returns the file extension of uri without its leading dot
// (lowercased), for dispatch to a builtin compiler by extension.
func Ext(uri string) string {
	e := filepath.Ext(uri)
	return strings.ToLower(strings.TrimPrefix(e, "."))
}
