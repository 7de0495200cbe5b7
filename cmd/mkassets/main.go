// Command mkassets rasterises the digit, colon and icon bitmaps and writes
// them as a packed blob for the remote's -assets flag.
package main

import (
	"flag"
	"fmt"
	"os"

	"mediaremote-go/assets"
)

func main() {
	out := flag.String("o", "assets.bin", "output path")
	check := flag.String("check", "", "verify an existing blob instead of writing one")
	flag.Parse()

	if *check != "" {
		if err := verify(*check); err != nil {
			fmt.Fprintln(os.Stderr, "mkassets:", err)
			os.Exit(1)
		}
		fmt.Println(*check, "ok")
		return
	}

	blob, err := assets.Encode(assets.Render())
	if err != nil {
		fmt.Fprintln(os.Stderr, "mkassets:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, blob, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "mkassets:", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d bytes\n", *out, len(blob))
}

func verify(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c, err := assets.Parse(blob)
	if err != nil {
		return err
	}
	return c.Complete()
}
