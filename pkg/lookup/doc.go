// Package lookup queries the public CNPJ and CEP services used to autofill
// the contract form. Responses are mapped into Company and Address values and
// failures are classified as not-found or unavailable so callers can show the
// matching inline message.
package lookup
