// Package model defines the contract form vocabulary shared by the controller,
// validation gate, preview renderer and front ends: the field identifiers, the
// ordered field list with labels and masks, the create/edit mode and the
// persisted contract record that can be copied into the form.
package model
