// Package main is the entry point for the semgov application
package main

import (
	"github.com/semlayer/semgov/cmd"
)

func main() {
	cmd.Execute()
}
