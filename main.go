// Package main is the entry point for the cujbench CLI.
package main

import "cujbench.dev/pkg/cujbench/cmd"

func main() {
	cmd.Execute()
}
