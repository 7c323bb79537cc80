package units

// Family tags the measurement family a canonical unit belongs to. Conversion
// is only ever attempted within a single family.
type Family string

const (
	FamilyVolume Family = "volume"
	FamilyMetric Family = "metric-liquid"
	FamilyMass   Family = "mass"
	FamilyCount  Family = "count"
)

// familyInfo pairs a family tag with its base unit.
type familyInfo struct {
	Family Family
	Base   string
}

// toBaseFactor holds the exact multiplier from each canonical unit into its
// family base unit (tsp for volume, ml for metric liquid, g for mass).
var toBaseFactor = map[string]float64{
	"tsp":  1,
	"tbsp": 3,
	"cup":  48,

	"ml": 1,
	"l":  1000,

	"g":  1,
	"kg": 1000,
	"oz": 28.349523125,
	"lb": 453.59237,
}

var familyOf = map[string]familyInfo{
	"tsp":  {FamilyVolume, "tsp"},
	"tbsp": {FamilyVolume, "tsp"},
	"cup":  {FamilyVolume, "tsp"},

	"ml": {FamilyMetric, "ml"},
	"l":  {FamilyMetric, "ml"},

	"g":  {FamilyMass, "g"},
	"kg": {FamilyMass, "g"},
	"oz": {FamilyMass, "g"},
	"lb": {FamilyMass, "g"},
}

// FamilyOf classifies a unit. Any token outside the volume/metric/mass tables
// is a count unit whose base is itself, factor 1; count units never convert
// across tokens. An empty token yields an empty family, signalling that no
// conversion is possible.
func FamilyOf(unit string) (Family, string) {
	u := Canonical(unit)
	if u == "" {
		return "", ""
	}
	if info, ok := familyOf[u]; ok {
		return info.Family, info.Base
	}
	return FamilyCount, u
}
