package es

// VersioningStrategy assigns schema versions to domain events. The result
// depends only on the event's type and is always >= 1.
type VersioningStrategy interface {
	GetVersion(event any) Version
}

type VersioningFunc func(event any) Version

func (f VersioningFunc) GetVersion(event any) Version { return f(event) }

// SimpleVersioningStrategy looks versions up by event type name. Types it
// has not been told about get DefaultVersion. The version is informational:
// an unknown type is never an error.
type SimpleVersioningStrategy struct {
	versions map[string]Version
}

type EventVersionOption struct {
	eventType string
	version   Version
}

// WithEventVersion pins the version for event type T.
func WithEventVersion[T any](v Version) EventVersionOption {
	return EventVersionOption{eventType: EventTypeOf(new(T)), version: v}
}

// WithEventTypeVersion pins the version for an event type name.
func WithEventTypeVersion(eventType string, v Version) EventVersionOption {
	return EventVersionOption{eventType: eventType, version: v}
}

func NewSimpleVersioningStrategy(opts ...EventVersionOption) *SimpleVersioningStrategy {
	s := &SimpleVersioningStrategy{versions: make(map[string]Version, len(opts))}
	for _, o := range opts {
		v := o.version
		if !v.Valid() {
			v = DefaultVersion
		}
		s.versions[o.eventType] = v
	}
	return s
}

func (s *SimpleVersioningStrategy) GetVersion(event any) Version {
	if v, ok := s.versions[EventTypeOf(event)]; ok {
		return v
	}
	return DefaultVersion
}

var _ VersioningStrategy = (*SimpleVersioningStrategy)(nil)
