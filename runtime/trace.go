package runtime

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sergev/pseudo/lang"
)

type traceEntry struct {
	Running []int             `yaml:"running,flow"`
	Line    int               `yaml:"line,omitempty"`
	Globals map[string]string `yaml:"globals,omitempty"`
	Locals  map[string]string `yaml:"locals,omitempty"`
	Errors  map[int]string    `yaml:"errors,omitempty"`
}

// TraceYAML renders a snapshot as one YAML document: the running statement
// IDs, the line about to run, user variables and errors. Builtins are left
// out of the globals.
func TraceYAML(snap lang.Snapshot, f *Formatter) ([]byte, error) {
	entry := traceEntry{
		Running: []int{},
		Globals: variables(snap.Globals, f),
		Locals:  variables(snap.Locals, f),
	}
	for _, id := range snap.Running() {
		entry.Running = append(entry.Running, int(id))
	}
	sort.Ints(entry.Running)
	if snap.Current != nil {
		entry.Line = snap.Current.Pos().Line
	}
	for id, a := range snap.Annotations {
		if a.Error == "" {
			continue
		}
		if entry.Errors == nil {
			entry.Errors = make(map[int]string)
		}
		entry.Errors[int(id)] = a.Error
	}
	return yaml.Marshal(entry)
}

// UserVariables returns the bindings in vars that are not builtins, sorted by
// name.
func UserVariables(vars map[string]lang.Value) []string {
	names := make([]string, 0, len(vars))
	for name, v := range vars {
		if p := v.Procedure(); p != nil && p.Builtin != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func variables(vars map[string]lang.Value, f *Formatter) map[string]string {
	names := UserVariables(vars)
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = f.Format(vars[name])
	}
	return out
}
