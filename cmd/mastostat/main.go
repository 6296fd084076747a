// Package main is the entry point for the mastostat CLI tool.
package main

import (
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/cmd"
)

func main() {
	cmd.Execute()
}
