package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"recipe-highlighter/internal/pkg/common"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	common.Sync()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
