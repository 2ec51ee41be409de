// Package form owns the contract form state and the operations a user can
// perform on it: typing into masked fields with debounced CNPJ/CEP lookups,
// loading saved contracts for edit or preview, validating before submission,
// rendering the contract preview and exporting it as PDF.
//
// All mutations go through a Controller, which serialises them with a mutex
// and publishes an immutable View after every change.
package form
