package domain

import "strings"

// Project classification. A package belongs to the nexus family when its
// manifest carries one of these keywords, or when its name contains one of
// the core package names.
var (
	nexusKeywords = []string{"nexus-module", "nexus-connection", "nexus-app"}
	nexusNames    = []string{"nexus-core", "nexus-extend"}
)

// Manifest is the explicit schema for the fields nex reads out of a
// package.json. Absent fields decode to their zero values; callers must
// treat empty strings and nil maps/slices as "not declared" rather than
// relying on dynamic key lookup.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Keywords     []string          `json:"keywords"`
	Dependencies map[string]string `json:"dependencies"`
	Private      bool              `json:"private"`
}

// HasKeyword reports whether the manifest declares the given keyword.
func (m Manifest) HasKeyword(kw string) bool {
	for _, k := range m.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// IsNexusProject reports whether this manifest describes one of the
// managed nexus packages.
func (m Manifest) IsNexusProject() bool {
	for _, kw := range nexusKeywords {
		if m.HasKeyword(kw) {
			return true
		}
	}
	for _, n := range nexusNames {
		if strings.Contains(m.Name, n) {
			return true
		}
	}
	return false
}

// MatchesType reports whether the manifest matches a project-type filter.
// An empty filter matches everything.
func (m Manifest) MatchesType(projType string) bool {
	if projType == "" {
		return true
	}
	return m.HasKeyword(projType)
}
