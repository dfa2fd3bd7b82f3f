// Package spec defines specifications: named criteria a measurement of a
// metric is checked against. ThresholdSpecification is the only concrete
// kind. Partial holds a reusable fragment that specifications inherit from.
package spec
