// Package processing provides the processing steps applied to cw-EPR
// datasets: field and frequency correction, baseline correction,
// normalisation, phase correction, background subtraction and axis
// manipulation.
//
// A processing step modifies the dataset in place and yields no
// independent result; routines producing standalone numbers or
// polynomials live in package analysis.
package processing
