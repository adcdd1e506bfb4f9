// Package report is the ordered, queryable log a build produces. Passes
// communicate expected failures by adding entries here instead of returning
// errors, and a build is failed exactly when its report holds an Error entry.
package report
