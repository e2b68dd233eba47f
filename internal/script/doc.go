// Package script evaluates the small HCL programs a mapping may carry: match
// domains that locate existing records during import, and snippets that
// post-process serialized or deserialized values.
//
// A match domain is one HCL expression producing a list of
// [field, operator, value] triples:
//
//	[["ref", "=", ref], ["active", "=", true]]
//
// A snippet is an HCL body of attributes. Each attribute is evaluated in
// source order and stored under its name in the result, so later attributes
// see the values assigned by earlier ones:
//
//	display = upper(result.name)
//	source  = "crm"
package script
