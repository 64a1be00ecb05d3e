// Package utils provides small conversion and validation helpers shared by
// the table layer, the data sources and the job loader. Conversions report an
// error instead of defaulting to a zero value, so a malformed cell never turns
// into a silent match.
package utils
