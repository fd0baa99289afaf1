package es

import "log/slog"

// Version is the schema version of a persisted event payload. It is
// metadata for consumers and is always >= 1.
type Version int

// DefaultVersion is assigned to event types without an explicit version.
const DefaultVersion Version = 1

func (v Version) Int() int                               { return int(v) }
func (v Version) Valid() bool                            { return v >= DefaultVersion }
func (v Version) SlogAttr() slog.Attr                    { return newSlogVersionAttr("version", v) }
func (v Version) SlogAttrWithKey(key string) slog.Attr   { return newSlogVersionAttr(key, v) }
func newSlogVersionAttr(key string, v Version) slog.Attr { return slog.Int(key, int(v)) }
