package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gitinsky/gatekeeper"
)

func main() {
	configPath := flag.String("config", "gatekeeper.toml", "path to the TOML configuration file")
	flag.Parse()

	_, srv, err := gatekeeper.New(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gatekeeperd: %v\n", err)
		os.Exit(1)
	}

	srv.Run()
}
