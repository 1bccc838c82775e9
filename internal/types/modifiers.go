package types

// Modifier application is a pure interner traversal: GetWithX
// returns the canonical TypeID for "one more X layer over t", structurally
// deduplicated so repeated calls with the same t return the same ID.
// GetWithoutX strips exactly one layer of that kind if present, and is a
// no-op otherwise (idempotent on already-stripped input).

func (in *Interner) GetWithRef(t TypeID) TypeID {
	return in.internStructural(Type{Kind: KindReference, Elem: t})
}

func (in *Interner) GetWithoutRef(t TypeID) TypeID {
	if ty := in.Get(t); ty.Kind == KindReference {
		return ty.Elem
	}
	return t
}

func (in *Interner) IsReference(t TypeID) bool { return in.KindOf(t) == KindReference }

func (in *Interner) GetWithStrongPtr(t TypeID) TypeID {
	return in.internStructural(Type{Kind: KindStrongPtr, Elem: t})
}

func (in *Interner) GetWithoutStrongPtr(t TypeID) TypeID {
	if ty := in.Get(t); ty.Kind == KindStrongPtr {
		return ty.Elem
	}
	return t
}

func (in *Interner) IsStrongPtr(t TypeID) bool { return in.KindOf(t) == KindStrongPtr }

func (in *Interner) GetWithWeakPtr(t TypeID) TypeID {
	return in.internStructural(Type{Kind: KindWeakPtr, Elem: t})
}

func (in *Interner) GetWithoutWeakPtr(t TypeID) TypeID {
	if ty := in.Get(t); ty.Kind == KindWeakPtr {
		return ty.Elem
	}
	return t
}

func (in *Interner) IsWeakPtr(t TypeID) bool { return in.KindOf(t) == KindWeakPtr }

func (in *Interner) GetWithDynStrongPtr(t TypeID) TypeID {
	return in.internStructural(Type{Kind: KindDynStrongPtr, Elem: t})
}

func (in *Interner) GetWithoutDynStrongPtr(t TypeID) TypeID {
	if ty := in.Get(t); ty.Kind == KindDynStrongPtr {
		return ty.Elem
	}
	return t
}

func (in *Interner) IsDynStrongPtr(t TypeID) bool { return in.KindOf(t) == KindDynStrongPtr }

// IsAnyStrongPtr reports whether t is a strong or dyn-strong pointer —
// the two variants `box e` may legally unbox from, minus dyn for Unbox:
// only non-dyn strong pointers may be unboxed.
func (in *Interner) IsAnyStrongPtr(t TypeID) bool {
	k := in.KindOf(t)
	return k == KindStrongPtr || k == KindDynStrongPtr
}

// Unalias follows KindAlias targets to the final non-alias TypeID.
func (in *Interner) Unalias(t TypeID) TypeID {
	seen := make(map[TypeID]bool)
	for {
		ty := in.Get(t)
		if ty.Kind != KindAlias {
			return t
		}
		if seen[t] {
			return t // alias cycle guard: returns the alias where the cycle closes
		}
		seen[t] = true
		info := in.aliasInfo(t)
		if info == nil {
			return t
		}
		t = info.Target
	}
}

// Equal reports type equality per : equal iff the underlying
// unaliased TypeIDs are identical.
func (in *Interner) Equal(a, b TypeID) bool {
	return in.Unalias(a) == in.Unalias(b)
}

// StripAllModifiers removes every leading modifier layer, used when the
// binder needs the raw receiver type for field/method resolution.
func (in *Interner) StripAllModifiers(t TypeID) TypeID {
	for {
		ty := in.Get(t)
		if !ty.Kind.IsModifier() {
			return t
		}
		t = ty.Elem
	}
}
