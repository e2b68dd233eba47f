// Package diagnostic collects the errors, warnings and notes produced while
// validating a mapping configuration file.
package diagnostic
