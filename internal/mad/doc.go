// Package mad implements mass-aggregate bodies: flat arrays of point masses
// joined by springs. Volumes lay masses out on a regular lattice, curves on a
// chain, and Cook samples a closed triangle mesh into a volume.
package mad
