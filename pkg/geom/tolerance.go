package geom

// Tolerance pairs a linear tolerance for point comparison with an angular
// tolerance for direction comparison.
type Tolerance struct {
	Point  float64 `json:"point"`
	Vector float64 `json:"vector"`
}

// JoinTolerance is the tolerance used to join projected segments and to
// compare the reconstructed start point.
var JoinTolerance = Tolerance{Point: 1e-9, Vector: 1e-9}

// DefaultTolerance is used for general geometric predicates.
var DefaultTolerance = Tolerance{Point: 1e-10, Vector: 1e-12}
