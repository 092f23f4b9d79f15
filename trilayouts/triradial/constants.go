package triradial

// where the root is centered when no node in the container is fixed
const CENTER_X = 400
const CENTER_Y = 400

// refinement rounds after the initial radial placement, not a convergence loop
const FORCE_ITERATIONS = 10

// upper bound on separation passes within one refinement round
const OVERLAP_PASSES = 20

const (
	ATTRACTION        = 0.4
	FIXED_ATTRACTION  = 0.8
	FIXED_WEIGHT      = 3.0
	BASE_ATTRACTION   = 0.05
	EDGE_REPULSION    = 0.3
	OVERLAP_DAMPING   = 0.5
	DAMPING_FALLOFF   = 0.1
	MIN_MOVE          = 1.0
	MIN_EDGE_DISTANCE = 0.1
)
