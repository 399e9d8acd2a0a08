package main

import (
	"os"

	_ "github.com/capsulehq/capsule-api/cmd/cli/auth"
	_ "github.com/capsulehq/capsule-api/cmd/cli/capsules"
	"github.com/capsulehq/capsule-api/cmd/cli/root"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
