// inspect dumps keys (and optionally values) from a ridepool Pebble store.
// Useful for checking the key scheme and index entries while debugging.
package main

import (
	"flag"
	"fmt"
	"os"

	"ridepool/pkg/logger"
	"ridepool/pkg/store"
)

func main() {
	var path, prefix string
	var values bool
	flag.StringVar(&path, "db", "", "Pebble DB path")
	flag.StringVar(&prefix, "prefix", "", "key prefix to list (empty lists all)")
	flag.BoolVar(&values, "values", false, "also print values")
	flag.Parse()
	if path == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}
	logger.Init()

	if err := store.Open(path, 0); err != nil {
		fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	keys, err := store.ListKeys(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list failed: %v\n", err)
		os.Exit(1)
	}
	for _, k := range keys {
		if !values {
			fmt.Println(k)
			continue
		}
		v, err := store.GetKey(k)
		if err != nil {
			fmt.Printf("%s\t<error: %v>\n", k, err)
			continue
		}
		fmt.Printf("%s\t%s\n", k, v)
	}
}
