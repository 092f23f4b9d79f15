package triconstrained

import "math"

// angle between consecutive spiral points
const SPIRAL_STEP = math.Pi / 3

// upper bound on overlap resolution passes, not a convergence guarantee
const OVERLAP_PASSES = 10

// spiral points probed per node before taking the next point regardless
const SPIRAL_PROBES = 256
