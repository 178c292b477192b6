// Package resolve turns user-typed system names into canonical catalog names.
//
// Users type names in any case, truncate them, and confuse the digit 0 with the
// letter O. Resolution runs a fixed triage: exact match, then the flattened
// index, then a unique prefix match, and finally reports ambiguous or unknown
// tokens as warnings.
package resolve

import (
	"fmt"
	"sort"
	"strings"
)

// Flatten case-folds a name and maps the digit '0' to the letter 'o'.
// Flatten(Flatten(s)) == Flatten(s).
func Flatten(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "0", "o")
}

// Catalog is the read-only view of the universe the resolver needs.
type Catalog interface {
	Names() []string
	Has(name string) bool
}

// Status tags the outcome of Resolve.
type Status int

const (
	Unknown   Status = iota // no candidate at all
	Exact                   // token is a canonical name
	Corrected               // token matched through the flattened index
	Guessed                 // token is a prefix of exactly one system
	Ambiguous               // token is a prefix of several systems
)

func (s Status) String() string {
	switch s {
	case Exact:
		return "exact"
	case Corrected:
		return "corrected"
	case Guessed:
		return "guessed"
	case Ambiguous:
		return "ambiguous"
	}
	return "unknown"
}

// MarshalText serializes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a name produced by String.
func (s *Status) UnmarshalText(b []byte) error {
	for st := Unknown; st <= Ambiguous; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown resolution status %q", b)
}

// WarningKind identifies a resolution warning.
type WarningKind string

const (
	WarnUnknownSystem   WarningKind = "unknown_system"
	WarnAmbiguousSystem WarningKind = "ambiguous_system"
	// WarnMixup means the token only matched after undoing an O/0 confusion.
	WarnMixup WarningKind = "oh_mixup"
)

// Warning is a non-fatal note about how a token was (or was not) resolved.
// Presentation layers render it; the resolver never formats text.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	Token      string      `json:"token"`
	Canonical  string      `json:"canonical,omitempty"`
	Candidates []string    `json:"candidates,omitempty"`
}

// Key identifies a warning for de-duplication.
func (w Warning) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", w.Kind, w.Token, w.Canonical, strings.Join(w.Candidates, ","))
}

// Resolution is the tagged result of Resolve.
type Resolution struct {
	Token      string    `json:"token"`
	Status     Status    `json:"status"`
	Canonical  string    `json:"canonical,omitempty"`
	Candidates []string  `json:"candidates,omitempty"`
	Warnings   []Warning `json:"warnings,omitempty"`
}

// OK reports whether the token resolved to a single system.
func (r Resolution) OK() bool { return r.Canonical != "" }

// Resolver owns the flattened index and the memo cache.
type Resolver struct {
	catalog    Catalog
	flat       map[string]string // flattened -> canonical
	flatNames  []string          // flattened names, catalog order
	canonical  []string          // canonical names, catalog order
	collisions int
	cache      *Cache
}

// New indexes the catalog. A nil cache gets a fresh one. When two names flatten
// to the same key the first in catalog order wins.
func New(catalog Catalog, cache *Cache) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	names := catalog.Names()
	r := &Resolver{
		catalog:   catalog,
		flat:      make(map[string]string, len(names)),
		flatNames: make([]string, 0, len(names)),
		canonical: make([]string, 0, len(names)),
		cache:     cache,
	}
	for _, name := range names {
		f := Flatten(name)
		if _, dup := r.flat[f]; dup {
			r.collisions++
			continue
		}
		r.flat[f] = name
		r.flatNames = append(r.flatNames, f)
		r.canonical = append(r.canonical, name)
	}
	return r
}

// Collisions returns how many catalog names were shadowed in the flattened index.
func (r *Resolver) Collisions() int { return r.collisions }

// Cache exposes the memo tables.
func (r *Resolver) Cache() *Cache { return r.cache }

// Canonical returns the catalog name for token using exact then flattened
// matching. Positive and negative results are memoized.
func (r *Resolver) Canonical(token string) (string, bool) {
	e := r.cache.canonicalFor(token, func() canonicalEntry {
		if r.catalog.Has(token) {
			return canonicalEntry{name: token, ok: true}
		}
		if name, ok := r.flat[Flatten(token)]; ok {
			return canonicalEntry{name: name, ok: true}
		}
		return canonicalEntry{}
	})
	return e.name, e.ok
}

// Valid is the memoized boolean form of Canonical.
func (r *Resolver) Valid(token string) bool {
	return r.cache.validFor(token, func() bool {
		_, ok := r.Canonical(token)
		return ok
	})
}

// Candidates returns every canonical name, in catalog order, whose flattened
// form starts with the flattened token. Tokens shorter than two characters
// never match.
func (r *Resolver) Candidates(token string) []string {
	if len(token) < 2 {
		return nil
	}
	list := r.cache.fuzzyFor(token, func() []string {
		prefix := Flatten(token)
		var out []string
		for i, f := range r.flatNames {
			if strings.HasPrefix(f, prefix) {
				out = append(out, r.canonical[i])
			}
		}
		return out
	})
	return append([]string(nil), list...)
}

// Mixup reports whether token differs from canonical beyond letter case, which
// after a successful lookup means an O/0 confusion was corrected.
func Mixup(token, canonical string) bool {
	return strings.ToLower(token) != strings.ToLower(canonical)
}

// merge overlays the typed prefix on the completed name, so "0st" + "Ostingele"
// becomes "0stingele" and the mixup check sees what the user actually typed.
func merge(typed, completion string) string {
	if len(typed) >= len(completion) {
		return typed
	}
	return typed + completion[len(typed):]
}

// Resolve runs the full triage for one token:
// exact -> flattened -> unique prefix -> ambiguous -> unknown.
func (r *Resolver) Resolve(token string) Resolution {
	res := Resolution{Token: token}

	if r.Valid(token) {
		name, _ := r.Canonical(token)
		res.Canonical = name
		res.Status = Exact
		if name != token {
			res.Status = Corrected
		}
		if Mixup(token, name) {
			res.Warnings = append(res.Warnings, Warning{Kind: WarnMixup, Token: token, Canonical: name})
		}
		return res
	}

	candidates := r.Candidates(token)
	switch {
	case len(candidates) == 1:
		name, _ := r.Canonical(candidates[0])
		res.Canonical = name
		res.Status = Guessed
		if merged := merge(token, candidates[0]); Mixup(merged, name) {
			res.Warnings = append(res.Warnings, Warning{Kind: WarnMixup, Token: merged, Canonical: name})
		}
	case len(candidates) > 1:
		res.Status = Ambiguous
		res.Candidates = candidates
		res.Warnings = append(res.Warnings, Warning{Kind: WarnAmbiguousSystem, Token: token, Candidates: candidates})
	default:
		res.Status = Unknown
		res.Warnings = append(res.Warnings, Warning{Kind: WarnUnknownSystem, Token: token})
	}
	return res
}

// Complete returns up to limit names for an autocomplete box: case-insensitive
// prefix matches first, then substring matches, each group in catalog order.
func (r *Resolver) Complete(query string, limit int) []string {
	q := Flatten(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []string{}
	}
	var prefix, contains []string
	for i, f := range r.flatNames {
		if strings.HasPrefix(f, q) {
			prefix = append(prefix, r.canonical[i])
		} else if strings.Contains(f, q) {
			contains = append(contains, r.canonical[i])
		}
	}
	result := append(prefix, contains...)
	if result == nil {
		return []string{}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// DedupWarnings drops repeated warnings, keeping first-seen order.
func DedupWarnings(ws []Warning) []Warning {
	seen := make(map[string]bool, len(ws))
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		k := w.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, w)
	}
	return out
}

// SortedKinds lists the distinct warning kinds present, for logging.
func SortedKinds(ws []Warning) []string {
	set := make(map[string]bool)
	for _, w := range ws {
		set[string(w.Kind)] = true
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
