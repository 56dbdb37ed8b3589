package types

// Pillar is a content category tag. The set of pillars is configurable, so
// validity is decided against the configured list.
type Pillar string

const (
	PillarHotTake       Pillar = "hot_take"
	PillarElDato        Pillar = "el_dato"
	PillarSabiasQue     Pillar = "sabias_que"
	PillarDetrasDelDato Pillar = "detras_del_dato"
	PillarEnLaCalle     Pillar = "en_la_calle"
)

// DefaultPillars returns the pillars used when none are configured
func DefaultPillars() []Pillar {
	return []Pillar{
		PillarHotTake,
		PillarElDato,
		PillarSabiasQue,
		PillarDetrasDelDato,
		PillarEnLaCalle,
	}
}

func (p Pillar) String() string {
	return string(p)
}

// In reports whether p is one of pillars
func (p Pillar) In(pillars []Pillar) bool {
	for _, v := range pillars {
		if v == p {
			return true
		}
	}
	return false
}

var pillarLabels = map[Pillar]string{
	PillarHotTake:       "Hot Take",
	PillarElDato:        "El Dato",
	PillarSabiasQue:     "Sabías Que",
	PillarDetrasDelDato: "Detrás del Dato",
	PillarEnLaCalle:     "En la Calle",
}

// Label returns the display name. Configured pillars without a known label
// are shown by key.
func (p Pillar) Label() string {
	if label, ok := pillarLabels[p]; ok {
		return label
	}
	return string(p)
}
