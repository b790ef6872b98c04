package analysis

// DistanceClass is a canonical race distance
type DistanceClass string

const (
	Class5K       DistanceClass = "5k"
	Class10K      DistanceClass = "10k"
	ClassHalf     DistanceClass = "half"
	ClassMarathon DistanceClass = "marathon"
)

// Classes lists all distance classes, shortest first
var Classes = []DistanceClass{Class5K, Class10K, ClassHalf, ClassMarathon}

// CanonicalMeters is the official distance per class, used for pace and
// Riegel projections.
var CanonicalMeters = map[DistanceClass]float64{
	Class5K:       5000,
	Class10K:      10000,
	ClassHalf:     21097.5,
	ClassMarathon: 42195,
}

// Band is an inclusive tolerance range in meters
type Band struct {
	Min float64
	Max float64
}

// defaultBands are asymmetric on purpose: course measurement and GPS
// drift skew recorded distances more on some classes than others.
var defaultBands = map[DistanceClass]Band{
	Class5K:       {4500, 5500},
	Class10K:      {9500, 10500},
	ClassHalf:     {20500, 22000},
	ClassMarathon: {41500, 43500},
}

// Classifier matches recorded activity distances to race classes
type Classifier struct {
	bands map[DistanceClass]Band
}

// NewClassifier builds a classifier from configured band overrides,
// falling back to the defaults for any class not overridden.
func NewClassifier(overrides map[string][2]float64) *Classifier {
	bands := make(map[DistanceClass]Band, len(defaultBands))
	for class, band := range defaultBands {
		bands[class] = band
	}
	for name, b := range overrides {
		class := DistanceClass(name)
		if _, known := bands[class]; known {
			bands[class] = Band{Min: b[0], Max: b[1]}
		}
	}
	return &Classifier{bands: bands}
}

// Matches reports whether a recorded distance falls inside the class band
func (c *Classifier) Matches(distanceMeters float64, class DistanceClass) bool {
	band, ok := c.bands[class]
	if !ok {
		return false
	}
	return distanceMeters >= band.Min && distanceMeters <= band.Max
}

// Classify returns the class a distance falls into, if any. Bands do not
// overlap, so the first match is the only match.
func (c *Classifier) Classify(distanceMeters float64) (DistanceClass, bool) {
	for _, class := range Classes {
		if c.Matches(distanceMeters, class) {
			return class, true
		}
	}
	return "", false
}
