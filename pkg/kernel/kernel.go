// Package kernel defines the mesh/diagnostics/error/Value core that
// every tessellation, triangulation, and operator package builds on: the
// canonical triangle Mesh type, the single Finalize routine all
// operators route through, the error-kind taxonomy, the Value sum type
// exchanged with the evaluator, and the golden-snapshot serialization
// grammar used by the test suite.
package kernel
