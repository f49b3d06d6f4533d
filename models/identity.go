package models

import (
	"strings"

	"bitbucket.org/mmdatafocus/resmatch_backend/config"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
)

// IdentityNormalizer collapses booker-name aliases to one canonical
// identity. Two lookup tables are prebuilt from the vocabulary: exact for
// CJK spellings, case-folded for latin ones. Normalization is idempotent
// because every canonical form maps to itself.
type IdentityNormalizer struct {
	exact  map[string]string
	folded map[string]string
	groups map[string][]string
}

func NewIdentityNormalizer(vocab *config.Vocabulary) *IdentityNormalizer {
	n := &IdentityNormalizer{
		exact:  make(map[string]string),
		folded: make(map[string]string),
		groups: make(map[string][]string),
	}
	for _, group := range vocab.AliasGroups {
		canonical := strings.TrimSpace(group.Canonical)
		if canonical == "" {
			continue
		}
		n.add(canonical, canonical)
		for _, alias := range group.Aliases {
			n.add(strings.TrimSpace(alias), canonical)
		}
	}
	return n
}

func (n *IdentityNormalizer) add(alias, canonical string) {
	if alias == "" {
		return
	}
	if utils.IsLatin(alias) {
		n.folded[strings.ToLower(alias)] = canonical
	} else {
		n.exact[alias] = canonical
	}
	n.groups[canonical] = appendUnique(n.groups[canonical], alias)
}

// Normalize returns the canonical identity for a free-text booker name.
// Blank input returns ""; unrecognized names pass through trimmed.
func (n *IdentityNormalizer) Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if canonical, ok := n.exact[name]; ok {
		return canonical
	}
	if canonical, ok := n.folded[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// ExpandSearchTerm returns every alias spelling in the canonical group of a
// search term, the canonical form included, so a search under any alias
// covers the whole identity. Terms outside the alias table come back alone.
func (n *IdentityNormalizer) ExpandSearchTerm(term string) []string {
	canonical := n.Normalize(term)
	if canonical == "" {
		return nil
	}
	if group, ok := n.groups[canonical]; ok {
		return appendUnique(append([]string{}, group...), canonical)
	}
	return []string{canonical}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
