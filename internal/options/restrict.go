package options

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Restrictions narrows axes by name: {"Reconstruction": {"fog", "plm"}}.
// It is the configuration-time input that replaces build-time option
// narrowing.
type Restrictions map[string][]string

// ParseRestrictions parses entries of the form "Axis=b,d". Repeating an axis
// merges its labels. An entry without "=" continues the labels of the
// previous one, so lists that were split on commas upstream
// ("Axis=b", "d") parse the same as the joined form.
func ParseRestrictions(entries ...string) (Restrictions, error) {
	r := make(Restrictions)
	last := ""
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, list, ok := strings.Cut(entry, "=")
		if !ok {
			if last == "" {
				return nil, fmt.Errorf("invalid restriction %q, expected Axis=label,label", entry)
			}
			name, list = last, entry
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid restriction %q, expected Axis=label,label", entry)
		}
		var labels []string
		for l := range strings.SplitSeq(list, ",") {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
		if len(labels) == 0 {
			return nil, fmt.Errorf("invalid restriction %q: no labels", entry)
		}
		r[name] = append(r[name], labels...)
		last = name
	}
	return r, nil
}

// Apply restricts every named axis found in axes. Naming an axis that is
// not in axes is an error, as is naming an unknown label; on error every
// axis is left as it was. restore puts the active subsets back to what
// they were before Apply. Dispatch tables snapshot the subsets when they
// are sealed, so calling restore after sealing keeps one run's
// restrictions from leaking into the next.
func (r Restrictions) Apply(axes ...*Axis) (restore func(), err error) {
	byName := make(map[string]*Axis, len(axes))
	for _, a := range axes {
		byName[strings.ToLower(a.Name())] = a
	}

	prev := make(map[*Axis][]int)
	restore = func() {
		for a, active := range prev {
			a.active = active
		}
	}
	for _, name := range slices.Sorted(maps.Keys(r)) {
		a, ok := byName[strings.ToLower(name)]
		if !ok {
			restore()
			return func() {}, fmt.Errorf("restriction names unknown axis %q", name)
		}
		if _, seen := prev[a]; !seen {
			prev[a] = slices.Clone(a.active)
		}
		if err := a.Restrict(r[name]...); err != nil {
			restore()
			return func() {}, err
		}
	}
	return restore, nil
}
