// Package roster classifies a subscriber roster into physical and digital
// delivery tracks and picks one representative per duplicate group.
//
// The pipeline is a chain of pure stages: Normalize, Derive,
// ClassifyPhysical, ClassifyDigital and Project. Each stage takes the
// previous record slice and returns an augmented copy; no stage drops or
// reorders records except Project. The package performs no I/O.
package roster
