package units

// Result is the outcome of a conversion. Callers must check OK before using
// Qty; failed conversions are values, never errors.
type Result struct {
	OK  bool
	Qty float64
}

// ToBase converts qty into the unit's family base unit. The second return is
// false when the unit cannot be classified.
func ToBase(qty float64, unit string) (float64, bool) {
	u := Canonical(unit)
	fam, _ := FamilyOf(u)
	if fam == "" {
		return 0, false
	}
	if fam == FamilyCount {
		return qty, true
	}
	return qty * toBaseFactor[u], true
}

// FromBase converts a base-unit quantity back into the given unit.
func FromBase(qty float64, unit string) (float64, bool) {
	u := Canonical(unit)
	fam, _ := FamilyOf(u)
	if fam == "" {
		return 0, false
	}
	if fam == FamilyCount {
		return qty, true
	}
	return qty / toBaseFactor[u], true
}

// Convert performs an exact from→base→to conversion. Both units must resolve
// to the same family; count units additionally share no conversions between
// distinct tokens (a clove is not a can). Cross-family requests, including
// volume↔mass, always return {OK:false}: density approximations are not this
// package's business.
func Convert(qty float64, fromUnit, toUnit string) Result {
	from := Canonical(fromUnit)
	to := Canonical(toUnit)

	fromFam, fromBase := FamilyOf(from)
	toFam, toBase := FamilyOf(to)
	if fromFam == "" || toFam == "" || fromFam != toFam {
		return Result{}
	}
	if fromBase != toBase {
		// Distinct count tokens land here: same family tag, different base.
		return Result{}
	}

	base, ok := ToBase(qty, from)
	if !ok {
		return Result{}
	}
	out, ok := FromBase(base, to)
	if !ok {
		return Result{}
	}
	return Result{OK: true, Qty: out}
}
