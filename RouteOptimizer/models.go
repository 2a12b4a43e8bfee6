package RouteOptimizer

// Point is a named geographic location in decimal degrees.
type Point struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Algorithm selects how the visiting order is produced.
type Algorithm string

const (
	// AlgorithmTwoOpt builds a nearest-neighbour tour and improves it with 2-opt.
	AlgorithmTwoOpt Algorithm = "2opt"
	// AlgorithmNearest stops after nearest-neighbour construction.
	AlgorithmNearest Algorithm = "nearest"
	// AlgorithmMultiStart runs nearest neighbour plus 2-opt from every start and keeps the best.
	AlgorithmMultiStart Algorithm = "multistart"
	// AlgorithmMST walks a minimum spanning tree in preorder and improves the walk with 2-opt.
	AlgorithmMST Algorithm = "mst"
	// AlgorithmExact enumerates every order. Limited to Options.ExactLimit points.
	AlgorithmExact Algorithm = "exact"
	// AlgorithmAuto uses AlgorithmExact for small inputs and AlgorithmTwoOpt otherwise.
	AlgorithmAuto Algorithm = "auto"
)

// Algorithms lists every accepted Algorithm value.
var Algorithms = []Algorithm{
	AlgorithmTwoOpt, AlgorithmNearest, AlgorithmMultiStart, AlgorithmMST, AlgorithmExact, AlgorithmAuto,
}

// DuplicatePolicy decides what happens when two points share a name.
type DuplicatePolicy int

const (
	// DuplicateReject fails with ErrDuplicateName.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateDisambiguate renames later duplicates to "<name> #<position>".
	DuplicateDisambiguate
)

const (
	StatusOK = "ok"

	DefaultIterationFactor = 10
	DefaultEps             = 1e-9
	DefaultExactLimit      = 9

	// autoExactThreshold is the largest input AlgorithmAuto solves exhaustively.
	autoExactThreshold = 8
)

// Options tunes a single Optimize call. The zero value is usable.
type Options struct {
	// Closed adds the edge from the last point back to the first.
	Closed bool
	// Algorithm defaults to AlgorithmTwoOpt.
	Algorithm Algorithm
	// IterationFactor bounds 2-opt to IterationFactor*n*n accepted moves.
	IterationFactor int
	// Eps is the minimum gain for a 2-opt move to count as an improvement.
	Eps float64
	// Workers is the number of goroutines used to fill the distance matrix.
	Workers int
	// Duplicates selects the duplicate-name policy.
	Duplicates DuplicatePolicy
	// ExactLimit caps the input size accepted by AlgorithmExact.
	ExactLimit int
}

// DefaultOptions returns the options used when fields are left zero.
func DefaultOptions() Options {
	return Options{
		Algorithm:       AlgorithmTwoOpt,
		IterationFactor: DefaultIterationFactor,
		Eps:             DefaultEps,
		Workers:         1,
		ExactLimit:      DefaultExactLimit,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Algorithm == "" {
		o.Algorithm = d.Algorithm
	}
	if o.IterationFactor <= 0 {
		o.IterationFactor = d.IterationFactor
	}
	if o.Eps <= 0 {
		o.Eps = d.Eps
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.ExactLimit <= 0 {
		o.ExactLimit = d.ExactLimit
	}
	return o
}

// Result is the outcome of a successful Optimize call.
type Result struct {
	// Order holds point names in visiting order.
	Order []string `json:"order"`
	// Points holds the same order with coordinates.
	Points []Point `json:"route_coordinates"`
	// TotalDistance is the route length in kilometres.
	TotalDistance float64 `json:"total_distance"`
	// InitialDistance is the length of the constructed route before improvement.
	InitialDistance float64 `json:"initial_distance"`
	// Iterations counts accepted 2-opt moves.
	Iterations int `json:"iterations"`
	// Converged is false when the iteration bound stopped the improvement phase.
	Converged bool      `json:"converged"`
	Closed    bool      `json:"closed"`
	Algorithm Algorithm `json:"algorithm"`
	Status    string    `json:"status"`
}
