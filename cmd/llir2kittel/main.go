// Command llir2kittel is the command-line driver spec.md §6 describes:
// it reads an LLIR module, runs the full lowering pipeline (Converter,
// Condensation, Kittelizer, Slicer, optionally the Bound-Constrainer),
// and prints the resulting rules in the requested output format.
package main

import "os"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
