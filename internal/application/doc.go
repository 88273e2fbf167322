// Package application provides application initialization and dependency wiring.
// It turns command-line declarations into a cascade chain over overrides, the
// environment and typed defaults, and renders the resolved view, keeping the
// main package focused on CLI parsing and orchestration.
package application
