// Package assembler scans source directories, groups probed files into
// mediaset candidates, elects a metadata source per group, and materializes
// candidates into mediaset directories with canonical filenames and a
// Metadaten.yaml.
//
// Assembly is a two-phase algorithm: scan → group → elect, then a separate
// materialize step that moves files. Materialization is all-or-nothing per
// candidate but never rolls back completed moves; partial directories are
// left in place and reported.
package assembler
