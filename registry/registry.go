// Package registry is the unified symbol table for functions, classes,
// interfaces, and constants (grounded on the teacher's registry.Registry
// singleton), plus the native `nova.` module registry of spec §6.4.
package registry

import (
	"strings"
	"sync"

	"github.com/novalang/nova/class"
	"github.com/novalang/nova/values"
)

// Registry holds every top-level symbol the engine knows about: classes,
// interfaces, free functions, and constants. One Registry is shared
// read-mostly across worker interpreters (spec §4.8).
type Registry struct {
	mu         sync.RWMutex
	classes    map[string]*class.Class
	interfaces map[string]*class.Interface
	functions  map[string]*values.Value
	constants  map[string]*values.Value

	// extensions maps a dispatch key (see extensionKey) to its impl, in
	// the resolution order of spec §4.5.
	extensions map[string]*values.Value

	annotationProcessors map[string]AnnotationProcessor
}

// AnnotationProcessor is a hook stored by name
// (engine.RegisterAnnotationProcessor, spec §6.1). The Registry stores and
// returns it; RegisterClass does not invoke it.
type AnnotationProcessor interface {
	Process(target *class.Class) error
}

func New() *Registry {
	return &Registry{
		classes:               make(map[string]*class.Class),
		interfaces:            make(map[string]*class.Interface),
		functions:             make(map[string]*values.Value),
		constants:             make(map[string]*values.Value),
		extensions:            make(map[string]*values.Value),
		annotationProcessors:  make(map[string]AnnotationProcessor),
	}
}

func (r *Registry) RegisterClass(c *class.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.Name] = c
}

func (r *Registry) Class(name string) (*class.Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

func (r *Registry) RegisterInterface(i *class.Interface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interfaces[i.Name] = i
}

func (r *Registry) Interface(name string) (*class.Interface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.interfaces[name]
	return i, ok
}

func (r *Registry) RegisterFunction(name string, fn *values.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[name] = fn
}

func (r *Registry) Function(name string) (*values.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

func (r *Registry) RegisterConstant(name string, v *values.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constants[name] = v
}

func (r *Registry) Constant(name string) (*values.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.constants[name]
	return v, ok
}

func (r *Registry) RegisterAnnotationProcessor(name string, p AnnotationProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.annotationProcessors[name] = p
}

func (r *Registry) AnnotationProcessor(name string) (AnnotationProcessor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.annotationProcessors[name]
	return p, ok
}

// extensionKey builds the map key for one (scope, receiver, method)
// triple; LookupExtension applies the resolution order of spec §4.5.
func extensionKey(scope, receiverKey, method string) string {
	return scope + ":" + receiverKey + "." + method
}

// RegisterExtension installs an extension method under one of the five
// resolution scopes of spec §4.5; scope is one of "type", "class", "any",
// "host-exact", "host-super".
func (r *Registry) RegisterExtension(scope, receiverKey, method string, impl *values.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions[extensionKey(scope, receiverKey, method)] = impl
}

// LookupExtension resolves an extension method in spec §4.5's order:
// (a) type-name extension, (b) class-name extension (for Object-variant
// receivers), (c) Any extension, (d) host-exact, (e) host-super/iface.
func (r *Registry) LookupExtension(typeName, className, method string, hostExact, hostSupers []string) (*values.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if fn, ok := r.extensions[extensionKey("type", typeName, method)]; ok {
		return fn, true
	}
	if className != "" {
		if fn, ok := r.extensions[extensionKey("class", className, method)]; ok {
			return fn, true
		}
	}
	if fn, ok := r.extensions[extensionKey("any", "Any", method)]; ok {
		return fn, true
	}
	for _, hc := range hostExact {
		if fn, ok := r.extensions[extensionKey("host-exact", hc, method)]; ok {
			return fn, true
		}
	}
	for _, hs := range hostSupers {
		if fn, ok := r.extensions[extensionKey("host-super", hs, method)]; ok {
			return fn, true
		}
	}
	return nil, false
}

// NativeModule is a registration function that installs a built-in
// module's symbols into target (spec §6.4).
type NativeModule func(target Target)

// Target is the minimal surface a NativeModule needs to install symbols;
// satisfied by environment.Environment.
type Target interface {
	DefineBuiltin(name string, val interface{})
}

// ModuleRegistry recognises the `nova.` prefix followed by up to three
// dot-separated segments, longest-prefix match winning (spec §6.4).
type ModuleRegistry struct {
	mu      sync.RWMutex
	modules map[string]NativeModule
}

func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]NativeModule)}
}

// Register installs a module under a dotted path like "nova.json".
func (m *ModuleRegistry) Register(path string, mod NativeModule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules[path] = mod
}

// Resolve finds the native module registered for path using longest-
// prefix match over up to three `nova.`-segments.
func (m *ModuleRegistry) Resolve(path string) (NativeModule, bool) {
	if !strings.HasPrefix(path, "nova.") {
		return nil, false
	}
	segments := strings.Split(path, ".")
	if len(segments) > 4 { // "nova" + up to 3 segments
		segments = segments[:4]
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for n := len(segments); n >= 2; n-- {
		candidate := strings.Join(segments[:n], ".")
		if mod, ok := m.modules[candidate]; ok {
			return mod, true
		}
	}
	return nil, false
}

// Load resolves path and, if found, installs it into target.
func (m *ModuleRegistry) Load(path string, target Target) bool {
	mod, ok := m.Resolve(path)
	if !ok {
		return false
	}
	mod(target)
	return true
}
