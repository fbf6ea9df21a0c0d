// Package main is the entry point for the upnpres application.
package main

import (
	"os"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/cmd/upnpres/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
