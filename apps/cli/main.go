package main

import (
	"fmt"
	"os"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/apps/cli/root"
)

func main() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
