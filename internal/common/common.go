// Package common holds small helpers shared across packages.
package common

// UnknownStr is the String() value for enum values outside their known range.
const UnknownStr = "unknown"
