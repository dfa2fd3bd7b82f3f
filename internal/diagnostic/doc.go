// Package diagnostic collects structured findings produced while loading and
// resolving specification documents.
//
// A diagnostic names the document it concerns, the reference that caused it
// (if any) and a short machine-readable code, so the CLI can print them and
// tests can assert on them without matching message text.
package diagnostic
