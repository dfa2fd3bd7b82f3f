// Package document holds the ordered YAML mappings that specifications and
// partials are written in, together with the merge rule used for
// inheritance and a content fingerprint.
package document
