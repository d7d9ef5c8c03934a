package enum

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	mu          sync.RWMutex
	enumManager = map[reflect.Type]map[string]any{}
)

// New registers value as a member of its enum type. The textual form of the
// member is fmt.Sprint(value).
func New[T comparable](value T) T {
	mu.Lock()
	defer mu.Unlock()

	t := reflect.TypeOf(value)
	if _, ok := enumManager[t]; !ok {
		enumManager[t] = map[string]any{}
	}

	enumManager[t][fmt.Sprint(value)] = value
	return value
}

// ToEnum converts s to a registered member of the enum type T.
func ToEnum[T comparable](s string) (T, error) {
	mu.RLock()
	defer mu.RUnlock()

	var defaultT T
	members, ok := enumManager[reflect.TypeOf(defaultT)]
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	v, ok := members[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return v.(T), nil
}

// ToString returns the textual form of a registered member, or an empty string
// if value is not registered.
func ToString[T comparable](value T) string {
	mu.RLock()
	defer mu.RUnlock()

	s := fmt.Sprint(value)
	if _, ok := enumManager[reflect.TypeOf(value)][s]; !ok {
		return ""
	}

	return s
}
