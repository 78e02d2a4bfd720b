// Package textutil provides title normalization and filesystem-safe name
// handling shared by the classifier, assembler, and library integrator.
package textutil
