// Package field evaluates the scalar potential produced by a set of
// metaball sources.
//
//   - [Source]: a point with radius, velocity and a fine offset
//   - [Sources]: the ordered collection owned by a scene
//   - [Evaluate]: Σ r / distance over every source
//
// A point is inside the implicit surface when its potential exceeds
// [Threshold].
package field
