// Package naming parses and builds identifiers for packages, metrics,
// specifications, and specification partials.
//
// Specification names are dotted:
//
//	validate_drp.PA1.design   package.metric.level
//	PA1.design                metric.level (package from context)
//	design                    level only
//
// Partial names reference a fragment of a YAML file in a package:
//
//	validate_drp:custom/gri#base   package:path#fragment
//	custom/gri#base                path#fragment (package from context)
//	#base                          fragment only (package and path from context)
//
// Names are comparable values and can be used as map keys.
package naming
