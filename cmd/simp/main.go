package main

import (
	"os"

	"github.com/simp-lang/simp/cmd/simp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
