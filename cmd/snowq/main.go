package main

import (
	"os"
)

func main() {
	err := NewRootCmd().Execute()
	_ = stopTelemetry()
	if err != nil {
		os.Exit(1)
	}
}
