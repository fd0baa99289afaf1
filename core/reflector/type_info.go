// Package reflector caches type metadata used to name events and aggregates.
package reflector

import (
	"reflect"
	"sync"
)

// maxCacheSize bounds the type cache. Programs have a small, fixed set of
// event and aggregate types, so the limit only guards against misuse.
const maxCacheSize = 1024

var (
	muCache sync.RWMutex
	cache   = make(map[reflect.Type]TypeInfo)
)

// TypeInfo holds the names of a reflected type. Pointer types are always
// described by their element type.
type TypeInfo struct {
	Name  string       // "pkg/path.TypeName"
	Short string       // "TypeName"
	Type  reflect.Type // element type for pointers
}

func (t TypeInfo) IsZero() bool { return t.Type == nil }

// TypeInfoOf returns the TypeInfo for the dynamic type of x.
func TypeInfoOf(x any) TypeInfo {
	return TypeInfoForType(reflect.TypeOf(x))
}

// TypeInfoFor returns the TypeInfo for T.
func TypeInfoFor[T any]() TypeInfo {
	return TypeInfoForType(reflect.TypeFor[T]())
}

// ShortNameOf is shorthand for TypeInfoOf(x).Short.
func ShortNameOf(x any) string { return TypeInfoOf(x).Short }

func TypeInfoForType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	muCache.RLock()
	ti, ok := cache[t]
	muCache.RUnlock()
	if ok {
		return ti
	}

	ti = TypeInfo{
		Name:  t.PkgPath() + "." + t.Name(),
		Short: t.Name(),
		Type:  t,
	}

	muCache.Lock()
	defer muCache.Unlock()
	if existing, ok := cache[t]; ok {
		return existing
	}
	if len(cache) >= maxCacheSize {
		cache = make(map[reflect.Type]TypeInfo)
	}
	cache[t] = ti
	return ti
}
