// pkg/genie/variant.go
package genie

import "strings"

// Variant is one optional tier of a unit's trailing layout.
type Variant uint8

const (
	VariantSpeed Variant = iota
	VariantDeadFish
	VariantBird
	VariantType50
	VariantProjectile
	VariantCreatable
	VariantBuilding
	variantCount
)

var variantNames = [variantCount]string{
	"speed", "dead_fish", "bird", "type50", "projectile", "creatable", "building",
}

func (v Variant) String() string {
	if v < variantCount {
		return variantNames[v]
	}
	return "unknown"
}

// VariantSet is a bit set of variants.
type VariantSet uint8

func (s VariantSet) with(v Variant) VariantSet { return s | 1<<v }

// Has reports whether v is in the set.
func (s VariantSet) Has(v Variant) bool { return s&(1<<v) != 0 }

// Kinds returns the members in ladder order, which is also the order they
// appear in the stream.
func (s VariantSet) Kinds() []Variant {
	var out []Variant
	for v := Variant(0); v < variantCount; v++ {
		if s.Has(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s VariantSet) String() string {
	kinds := s.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

// VariantsFor maps a unit type code to the tiers its record carries. The
// ladder is cumulative; note the exact-match tiers for projectiles (60) and
// buildings (80). Types 10 and 90 carry nothing, not even speed.
func VariantsFor(t uint8) VariantSet {
	var s VariantSet
	if t == 10 || t == 90 {
		return s
	}
	if t >= 20 {
		s = s.with(VariantSpeed)
	}
	if t >= 30 {
		s = s.with(VariantDeadFish)
	}
	if t >= 40 {
		s = s.with(VariantBird)
	}
	if t >= 50 {
		s = s.with(VariantType50)
	}
	if t == 60 {
		s = s.with(VariantProjectile)
	}
	if t >= 70 {
		s = s.with(VariantCreatable)
	}
	if t == 80 {
		s = s.with(VariantBuilding)
	}
	return s
}
