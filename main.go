package main

import (
	"os"

	"github.com/sevasaathi/sevasaathi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
