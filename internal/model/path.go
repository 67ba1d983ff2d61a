package model

// Path represents a file system path.
type Path string

// LogicalID is a repo-relative identifier for a path under the tracked
// source tree. It is used for group descriptions and log labels so reports
// stay readable regardless of where the tree is checked out.
type LogicalID string
