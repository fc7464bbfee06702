// Package app wires configuration, logging and the document store together
// and implements the ghostkey commands on top of them.
package app
