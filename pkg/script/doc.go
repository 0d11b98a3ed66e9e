// Package script runs declarative modelling scripts.
//
// A script is a YAML (or JSON) document with named params and an ordered
// list of steps. Each step names an operation from the catalogue built by
// Operations and passes it arguments; string arguments of the form ${expr}
// are evaluated against params and repeat variables:
//
//	name: flange
//	params: {d: 80, holes: 6}
//	steps:
//	  - op: recipe.cylinder
//	    args: {diameter: "${d}", height: 10}
//	  - op: feature.hole_pattern
//	    args: {count: "${holes}", hole_diameter: 6, pitch_diameter: "${d - 20}", depth: 10}
package script
