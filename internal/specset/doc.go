// Package specset loads specification documents from package directories,
// resolves their inheritance and exposes the result as a SpecificationSet.
//
// Loading happens in three steps. Every YAML file of every package is read
// and each sub-document is normalized: partial ids and base references are
// fully qualified, specification names as far as the document allows. The
// documents then go through resolution passes; a document whose bases are
// all known is merged and stored, the others wait for the next pass. A pass
// that stores nothing ends the load with a ResolutionError naming every
// document still waiting.
package specset
