// Package main provides the DarkGo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/darkgo-ml/darkgo/backend/cpu"
	"github.com/darkgo-ml/darkgo/darknet"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("DarkGo %s\n", version)
			return
		case "info":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: darkgo info <config.cfg>")
				os.Exit(1)
			}
			if err := info(os.Args[2]); err != nil {
				fmt.Fprintf(os.Stderr, "darkgo: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

// info builds the network a config describes and prints its layer
// table, without loading any weights.
func info(path string) error {
	net, err := darknet.LoadConfig(path, cpu.New())
	if err != nil {
		return err
	}
	fmt.Print(net.Summary())
	fmt.Printf("weight floats expected: %d\n", net.WeightCount())
	return nil
}

func usage() {
	fmt.Println("DarkGo - Darknet inference for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version       Show version")
	fmt.Println("  info <cfg>    Parse a config and print its layer table")
}
