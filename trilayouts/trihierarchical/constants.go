package trihierarchical

// barycenter iterations, each one down sweep and one up sweep
const SWEEPS = 12
