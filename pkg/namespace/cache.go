package namespace

import (
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/dmbarbour/glas/pkg/value"
)

// Cache is the lookup cache for resolved namespace definitions.
// fastcache is a byte-keyed, concurrent, bounded-memory cache — exactly
// the shape a DataDef's resolved value needs, so data definitions are
// cached there directly (shrub-encoded). ProgDef/CallbackDef values
// carry live Go closures (an *Env, a HostFunc) that cannot round-trip
// through bytes, so they are cached in an ordinary sync.Map instead;
// both tiers are consulted by Get/Put under one Cache API so Env.Resolve
// doesn't need to know which tier a given name lands in.
type Cache struct {
	data  *fastcache.Cache
	other sync.Map // key -> Definition, for Prog/Callback defs
}

// NewCache creates a cache with the given approximate byte budget for
// its data tier.
func NewCache(maxBytes int) *Cache {
	return &Cache{data: fastcache.New(maxBytes)}
}

func cacheKey(e *Env, name string) string {
	return fmt.Sprintf("%p:%s", e, name)
}

// Get returns the cached definition for name as resolved starting from
// env, if present.
func (c *Cache) Get(e *Env, name string) (Definition, bool) {
	key := cacheKey(e, name)
	if raw, ok := c.data.HasGet(nil, []byte(key)); ok {
		v, err := value.ShrubDecode(raw)
		if err != nil {
			return nil, false
		}
		return DataDef{Value: v}, true
	}
	if d, ok := c.other.Load(key); ok {
		return d.(Definition), true
	}
	return nil, false
}

// Put records d as the resolution of name starting from env.
func (c *Cache) Put(e *Env, name string, d Definition) {
	key := cacheKey(e, name)
	if dd, ok := d.(DataDef); ok {
		c.data.Set([]byte(key), value.ShrubEncode(dd.Value))
		return
	}
	c.other.Store(key, d)
}

// Invalidate drops every Prog/Callback-tier entry keyed against env;
// entries in the fastcache data tier are left in place (used by
// definition ops that produce a new Env from an old one: the new Env
// has its own identity and starts with an empty logical cache view
// simply because its pointer never appears as a cache key yet, but
// Invalidate lets a long-lived Env that is mutated via e.g. a hidden
// prefix explicitly drop stale entries rather than relying on pointer
// churn alone).
func (c *Cache) Invalidate(e *Env) {
	prefix := fmt.Sprintf("%p:", e)
	c.other.Range(func(k, _ any) bool {
		if ks, ok := k.(string); ok && len(ks) >= len(prefix) && ks[:len(prefix)] == prefix {
			c.other.Delete(k)
		}
		return true
	})
}
