// Package validation implements the synchronous gate run before a contract
// form is submitted. Every rule is evaluated independently so the form can
// annotate all offending fields at once.
package validation
