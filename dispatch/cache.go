// Package dispatch implements DispatchCache (spec §4.6): four bounded
// caches (method, constructor, getter, setter) keyed by
// (class, name, argument-type shape[, static-flag]), plus an unbounded
// host-member-index cache. The bounded caches use
// hashicorp/golang-lru/v2, adopted because an O(1) get/add LRU is exactly
// what §4.6 calls for rather than a hand-rolled ring buffer.
package dispatch

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/novalang/nova/class"
	"github.com/novalang/nova/values"
)

const defaultCapacity = 4096

// MethodKey is the cache key for method lookups (spec §4.6).
type MethodKey struct {
	Class    *class.Class
	Name     string
	ArgShape string
	Static   bool
}

// ConstructorKey is the cache key for constructor overload selection.
type ConstructorKey struct {
	Class    *class.Class
	ArgShape string
}

// FieldKey is the cache key for getter/setter resolution.
type FieldKey struct {
	Class *class.Class
	Name  string
}

// ArgShape interns an argument-type tuple into a single string key,
// matching spec §9's "intern argument-type tuples to make cache hits an
// equality and hash on fixed-size arrays" — interning into a string
// gives the same O(1) comparison property using Go's built-in map keys.
// A `null` element is encoded as "null" per §4.6 ("argument-type arrays
// may contain null").
func ArgShape(args []*values.Value) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		if a == nil || a.IsNull() {
			b.WriteString("null")
			continue
		}
		b.WriteString(a.TypeName())
	}
	return b.String()
}

// Cache is the DispatchCache: four bounded LRUs plus an unbounded
// host-member index.
type Cache struct {
	methods      *lru.Cache[MethodKey, *values.Value]
	constructors *lru.Cache[ConstructorKey, *class.Constructor]
	getters      *lru.Cache[FieldKey, *values.Value]
	setters      *lru.Cache[FieldKey, *values.Value]

	// hostMembers answers "does host class X have a member called Y" in
	// O(1); unbounded because host classes are finite and process-
	// lifetime-stable (spec §4.6).
	hostMembers sync.Map // key: hostMemberKey, value: bool
}

type hostMemberKey struct {
	hostClass string
	name      string
}

// New builds a Cache with the default per-cache capacity (4096).
func New() *Cache {
	methods, _ := lru.New[MethodKey, *values.Value](defaultCapacity)
	constructors, _ := lru.New[ConstructorKey, *class.Constructor](defaultCapacity)
	getters, _ := lru.New[FieldKey, *values.Value](defaultCapacity)
	setters, _ := lru.New[FieldKey, *values.Value](defaultCapacity)
	return &Cache{
		methods:      methods,
		constructors: constructors,
		getters:      getters,
		setters:      setters,
	}
}

func (c *Cache) GetMethod(key MethodKey) (*values.Value, bool)       { return c.methods.Get(key) }
func (c *Cache) PutMethod(key MethodKey, v *values.Value)            { c.methods.Add(key, v) }
func (c *Cache) GetConstructor(key ConstructorKey) (*class.Constructor, bool) {
	return c.constructors.Get(key)
}
func (c *Cache) PutConstructor(key ConstructorKey, ctor *class.Constructor) {
	c.constructors.Add(key, ctor)
}
func (c *Cache) GetGetter(key FieldKey) (*values.Value, bool) { return c.getters.Get(key) }
func (c *Cache) PutGetter(key FieldKey, v *values.Value)      { c.getters.Add(key, v) }
func (c *Cache) GetSetter(key FieldKey) (*values.Value, bool) { return c.setters.Get(key) }
func (c *Cache) PutSetter(key FieldKey, v *values.Value)      { c.setters.Add(key, v) }

// HasHostMember records and answers "does hostClass have a member named
// name" in O(1), memoised after the first reflective probe.
func (c *Cache) HasHostMember(hostClass, name string, probe func() bool) bool {
	key := hostMemberKey{hostClass, name}
	if v, ok := c.hostMembers.Load(key); ok {
		return v.(bool)
	}
	result := probe()
	c.hostMembers.Store(key, result)
	return result
}
