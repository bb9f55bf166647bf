// Package rules maps branch names to overlay colors.
//
// Rules are evaluated in the order they are configured and the first rule
// whose pattern matches the branch wins; there is no merging. Patterns are
// ECMAScript regular expressions, the flavor rule authors already use in
// editor settings:
//
//	[[rules]]
//	pattern = "^(main|master)$"
//	color = "#B71C1C"
//
//	[[rules]]
//	pattern = "^release/"
//	color = "#E65100"
//
// A pattern that does not compile is skipped, with a warning logged every
// time matching reaches it, and evaluation continues with the next rule.
// Colors are opaque strings and are never validated.
package rules
