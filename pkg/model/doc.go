// Package model defines the declarative field descriptors a form is built
// from and the FormState value map the form edits. Descriptors carry an
// identifier, a label, a default value, a layout span, a category that decides
// how the value is edited, and optional enumerated options. Options are either
// plain strings or CheckableOption values whose stored value differs from the
// displayed label.
package model
