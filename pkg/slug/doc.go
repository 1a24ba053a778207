// Package slug derives URL- and DNS-safe identifiers from display names.
// The tenant registry uses it to propose a slug when none is given.
package slug
