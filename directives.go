package tagtree

// Bypass marks a callback result as non-cacheable: Remember returns v to the
// caller but writes nothing to the store. Use it when the computed value is
// known to be transient (a fallback, a partial result during a backend
// outage).
func Bypass(v any) any { return bypassValue{v: v} }

// Reveal stores the callback result normally but makes Remember hand the
// caller a Revealed wrapper carrying the value together with its final tag
// snapshot. Entries stored this way keep revealing on later hits.
func Reveal(v any) any { return revealValue{v: v} }

// Revealed is what Remember returns for values stored under Reveal.
type Revealed struct {
	Value any
	Tags  map[string]string // tag key -> fingerprint snapshot
}

type bypassValue struct{ v any }

type revealValue struct{ v any }
