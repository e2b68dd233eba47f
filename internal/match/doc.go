// Package match ranks names by fuzzy similarity. Configuration validation
// uses it to suggest the attribute or mapping a misspelled reference most
// likely meant.
package match
