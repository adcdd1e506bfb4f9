// Package reportstream publishes finished build reports to a socket.io
// server, so a host tool can show results as builds complete.
package reportstream
