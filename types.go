// Package fusionpath implements algorithmic-regularization-path convex
// clustering and biclustering: CARP, CARP-VIZ and CBASS, one ADMM step
// per regularization level, as a reusable Go library.
package fusionpath

import (
	"fusionpath/internal/bikernel"
	"fusionpath/internal/graph"
	"fusionpath/internal/kernel"
	"fusionpath/internal/linalg"
	"fusionpath/internal/prox"
)

// Edge is one entry of a fusion graph: a pair of 1-based point indices
// and a positive fusion weight.
type Edge = graph.Edge

// Config bundles the ADMM/path-schedule configuration shared by RunCARP
// and RunCBASS.
type Config = kernel.Config

// Variant selects the plain loop or the back-tracking VIZ loop.
type Variant = kernel.Variant

const (
	Plain = kernel.Plain
	Viz   = kernel.Viz
)

// Penalty selects the V-step's proximal operator.
type Penalty = prox.Penalty

const (
	L2 = prox.L2
	L1 = prox.L1
)

// Status is the outcome of a path-tracking run.
type Status = kernel.Status

// StatusKind is Status's tag.
type StatusKind = kernel.StatusKind

const (
	Completed      = kernel.Completed
	MaxIterReached = kernel.MaxIterReached
	Cancelled      = kernel.Cancelled
	MultiMerge     = kernel.MultiMerge
)

// Cancel is a cooperative cancellation handle.
type Cancel = kernel.Cancel

// NewCancel returns a fresh, unset cancellation handle.
func NewCancel() *Cancel { return kernel.NewCancel() }

// Path is the result of a RunCARP call.
type Path = kernel.Path

// BiPath is the result of a RunCBASS call.
type BiPath = bikernel.Path

// InvalidInputError reports a malformed configuration or input.
type InvalidInputError = kernel.InvalidInputError

// NumericalOverflowError reports a non-finite iterate.
type NumericalOverflowError = kernel.NumericalOverflowError

// LinAlgError reports that the cached factorization could not be built.
type LinAlgError = linalg.LUError
