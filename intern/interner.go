// Package intern maps opaque caller state tokens to dense integer
// keys, so a TypedSimulator can address arbitrary domain states the
// same way a CompiledMdp addresses its own declared states.
package intern

import "github.com/signalnine/weavetree-go/werrors"

// Key is a dense integer identifier assigned in first-seen order.
type Key = int

// entry holds the payload and token originally interned for a Key.
type entry struct {
	payload any
	token   string
}

// Equaler is implemented by domain payloads that know how to compare
// themselves for the purposes of check_token_collisions. Payloads that
// don't implement it fall back to comparing the stored and incoming
// payloads with `==`; payloads of incomparable dynamic types (slices,
// maps, funcs) are never reported as mismatched.
type Equaler interface {
	EqualState(other any) bool
}

// Interner is a token -> Key map plus the reverse lookup. It is owned
// by exactly one TypedSimulator and is not safe for concurrent use.
type Interner struct {
	byToken map[string]Key
	byKey   []entry
	checkCollisions bool
}

// New creates an empty Interner. When checkCollisions is true, Intern
// verifies that a token matching an existing key still refers to an
// equal payload, returning a *werrors.DomainError otherwise.
func New(checkCollisions bool) *Interner {
	return &Interner{
		byToken:         make(map[string]Key),
		checkCollisions: checkCollisions,
	}
}

// Intern canonicalizes (payload, token) to a Key, allocating a new key
// on first sight of token. Intern accepts any string, including the
// empty one; rejecting untokenizable states is the caller's job
// (TypedSimulator does so at construction and on every step).
func (in *Interner) Intern(payload any, token string) (Key, error) {
	if key, ok := in.byToken[token]; ok {
		if in.checkCollisions {
			if err := in.checkSamePayload(key, payload); err != nil {
				return 0, err
			}
		}
		return key, nil
	}

	key := len(in.byKey)
	in.byToken[token] = key
	in.byKey = append(in.byKey, entry{payload: payload, token: token})
	return key, nil
}

func (in *Interner) checkSamePayload(key Key, incoming any) error {
	existing := in.byKey[key].payload

	if eq, ok := existing.(Equaler); ok {
		if !eq.EqualState(incoming) {
			return &werrors.DomainError{
				Message: "token collision: two states with the same token have different payloads",
			}
		}
		return nil
	}

	// No domain-defined equality available; fall back to structural
	// equality over the raw values. Incomparable dynamic types
	// (slices, maps, funcs) cannot be compared with `==` at all, so
	// that case is treated as "no mismatch detectable" rather than
	// panicking, matching spec.md §4.5's described fallback.
	if structurallyUnequal(existing, incoming) {
		return &werrors.DomainError{
			Message: "token collision: two states with the same token compare unequal",
		}
	}
	return nil
}

func structurallyUnequal(a, b any) (unequal bool) {
	defer func() {
		if recover() != nil {
			unequal = false
		}
	}()
	return a != b
}

// Payload returns the stored payload and original token for key.
func (in *Interner) Payload(key Key) (any, string, bool) {
	if key < 0 || key >= len(in.byKey) {
		return nil, "", false
	}
	e := in.byKey[key]
	return e.payload, e.token, true
}

// Len returns the number of distinct keys interned so far.
func (in *Interner) Len() int {
	return len(in.byKey)
}
