// Package export turns a rendered contract into a PDF document using the
// standard Helvetica font. Text is folded to ASCII, wrapped to the printable
// width and paginated according to the configured page geometry.
package export
