// Package mediaset defines the persisted mediaset model: the canonical
// filename set, the Metadaten.yaml schema, and the validation rules a
// directory must satisfy to count as a mediaset.
package mediaset
