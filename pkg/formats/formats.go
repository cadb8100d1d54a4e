// Package formats reads and writes mesh interchange files for cloth
// snapshots. Wavefront OBJ is implemented in obj.go.
package formats
