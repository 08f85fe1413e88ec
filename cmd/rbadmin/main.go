package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/rackbook/internal/admin"
)

func main() {
	if err := admin.NewApp(os.Stdout).Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
