package mapping

import (
	"context"
	"sort"
)

// Hook post-processes one serialized or deserialized value. bindings holds
// "record" (export) or "content" (import); result is the value built so far.
// The returned map replaces result; a nil map clears it.
type Hook func(ctx context.Context, bindings map[string]any, result map[string]any) (map[string]any, error)

// HookRegistry holds Go post-processing hooks keyed by mapping name. Hooks
// run before the mapping's snippet when use_snippet is set.
type HookRegistry struct {
	export map[string]Hook
	imp    map[string]Hook
}

// NewHookRegistry creates a new empty hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		export: make(map[string]Hook),
		imp:    make(map[string]Hook),
	}
}

// OnExport registers the export hook of a mapping, replacing any previous one.
func (r *HookRegistry) OnExport(mapping string, hook Hook) *HookRegistry {
	r.export[mapping] = hook
	return r
}

// OnImport registers the import hook of a mapping, replacing any previous one.
func (r *HookRegistry) OnImport(mapping string, hook Hook) *HookRegistry {
	r.imp[mapping] = hook
	return r
}

// Export returns the export hook of a mapping, or nil.
func (r *HookRegistry) Export(mapping string) Hook {
	if r == nil {
		return nil
	}

	return r.export[mapping]
}

// Import returns the import hook of a mapping, or nil.
func (r *HookRegistry) Import(mapping string) Hook {
	if r == nil {
		return nil
	}

	return r.imp[mapping]
}

// Names returns the sorted mapping names having at least one hook.
func (r *HookRegistry) Names() []string {
	if r == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(r.export)+len(r.imp))
	for name := range r.export {
		seen[name] = struct{}{}
	}

	for name := range r.imp {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
