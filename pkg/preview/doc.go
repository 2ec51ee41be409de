// Package preview renders the human-readable services contract from the
// current form values. A Document carries the sanitised HTML body shown in
// the page, the plain text lines handed to the PDF exporter and the filename
// slug derived from the company name and contract id.
package preview
