package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oliverbestmann/spindle/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
