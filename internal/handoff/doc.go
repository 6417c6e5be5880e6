// Package handoff turns an extracted selection into the inputs an external
// encoder needs: a validated frame range and a printf-style template per
// sequence, plus a concat list for standalone images. Nothing is executed.
package handoff
