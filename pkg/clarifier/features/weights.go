package features

// Group holds the squash weights of the seven shared features.
type Group struct {
	Pattern    float64 `koanf:"pattern" validate:"gte=0"`
	Distance   float64 `koanf:"distance" validate:"gte=0"`
	Occurrence float64 `koanf:"occurrence" validate:"gte=0"`
	Frequency  float64 `koanf:"frequency" validate:"gte=0"`
	Inclusion  float64 `koanf:"inclusion" validate:"gte=0"`
	Semantic   float64 `koanf:"semantic" validate:"gte=0"`
	Entity     float64 `koanf:"entity" validate:"gte=0"`
}

// Weights scales every feature before the tanh squash. Inhibition is not
// squashed; InhibitionWeight scales the gap below InhibitionThreshold.
type Weights struct {
	Query               Group   `koanf:"query"`
	Items               Group   `koanf:"items"`
	List                float64 `koanf:"list" validate:"gte=0"`
	InhibitionWeight    float64 `koanf:"inhibition_weight" validate:"gte=0"`
	InhibitionThreshold float64 `koanf:"inhibition_threshold" validate:"gte=-1,lte=1"`
}

// DefaultWeights returns the tuned weights.
func DefaultWeights() Weights {
	g := Group{
		Pattern:    1.0,
		Distance:   2.0,
		Occurrence: 1.0,
		Frequency:  0.1,
		Inclusion:  0.5,
		Semantic:   1.0,
		Entity:     0.1,
	}
	return Weights{
		Query:               g,
		Items:               g,
		List:                0.3,
		InhibitionWeight:    10.0,
		InhibitionThreshold: 0.95,
	}
}
