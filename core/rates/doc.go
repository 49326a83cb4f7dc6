// Package rates implements the single-ratio primitives of the CTR analysis
// guidelines: weighted and unweighted drive-alone rate, NDAT, mode share and
// response rate. Every primitive is a pure function over a record subset and
// reports a zero denominator as model.ErrUndefinedMetric rather than 0.
package rates
