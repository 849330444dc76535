// Package report summarizes an experiment's completed invocations into
// a JSON export plus optional HTML and PNG charts for operators.
package report
