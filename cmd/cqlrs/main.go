// Package main provides the cqlrs interactive CQL shell.
package main

import (
	"context"
	"os"

	"github.com/FlorianElke/cqlrs/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
