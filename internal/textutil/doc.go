// Package textutil provides small text helpers shared by the catalog and
// the command-line surface: display titles derived from media file names,
// filename sanitization for imports, and a generic conditional.
package textutil
