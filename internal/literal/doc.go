// Package literal parses key=value command-line arguments and types the
// values so they can declare defaults for a cascade chain.
package literal
