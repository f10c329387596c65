package value

// Sealing. A sealed value is opaque: every accessor in this package
// (Kind, Un, Uncons, PeelBit, ...) treats a Seal node as having none of
// the shapes they test for, except Unseal with the matching key. Key
// identity is typically a register identity (an opaque comparable Go
// value, e.g. a *register.Register pointer from pkg/register); this
// package only requires keys to be comparable with ==.

// Seal wraps v, observable only via Unseal with the same key.
func Seal(v *Value, key any) *Value {
	return &Value{kind: KSeal, sealKey: key, sealV: v}
}

// SealLinear wraps v as a linearly-sealed value: in addition to
// requiring Unseal to observe it, a linear seal forbids Copy/Drop
// except for transactional undo copies and concurrent clone copies
// (enforced by pkg/thread, not by this package).
func SealLinear(v *Value, key any) *Value {
	return &Value{kind: KSeal, sealKey: key, sealV: v, linear: true}
}

// Unseal reveals the value sealed under key. ok is false if v is not
// sealed, or is sealed under a different key.
func Unseal(v *Value, key any) (inner *Value, ok bool) {
	if v.kind != KSeal || v.sealKey != key {
		return nil, false
	}
	return v.sealV, true
}

// IsSealed reports whether v is a sealed value, regardless of key.
func IsSealed(v *Value) bool { return v.kind == KSeal }

// IsLinear reports whether v is a linearly-sealed value.
func IsLinear(v *Value) bool { return v.kind == KSeal && v.linear }
