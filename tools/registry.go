package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Registry is a flat catalog of tools, grouped by plugin namespace.
// Tools are addressed as "plugin.tool".
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ITool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ITool),
	}
}

// RegisterPlugin registers the tools under the plugin namespace.
func (r *Registry) RegisterPlugin(plugin string, list ...ITool) error {
	if plugin == "" {
		return errors.New("plugin name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tool := range list {
		name := plugin + "." + tool.Name()
		if _, ok := r.tools[name]; ok {
			return errors.Errorf("tool already registered: %s", name)
		}
		r.tools[name] = tool
		r.order = append(r.order, name)
	}
	return nil
}

// Get returns a tool by its qualified "plugin.tool" name.
func (r *Registry) Get(name string) (ITool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the qualified tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// List returns the tools in registration order.
func (r *Registry) List() []ITool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]ITool, 0, len(r.order))
	for _, name := range r.order {
		res = append(res, r.tools[name])
	}
	return res
}

// Plugins returns the sorted plugin namespaces.
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	var res []string
	for _, name := range r.order {
		plugin, _, _ := strings.Cut(name, ".")
		if !seen[plugin] {
			seen[plugin] = true
			res = append(res, plugin)
		}
	}
	sort.Strings(res)
	return res
}

// Describe returns one "plugin.tool: description" line per tool,
// for the system prompt of a chat loop.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sb strings.Builder
	for _, name := range r.order {
		fmt.Fprintf(&sb, "%s: %s\n", name, r.tools[name].Description())
	}
	return sb.String()
}
