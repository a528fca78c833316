// signalsctl validates and inspects signal definition files.
//
// Usage:
//
//	signalsctl validate <definitions.yaml>
//	signalsctl show <definitions.yaml>
//	signalsctl comparisons
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/ezachrisen/mailsignal"
	"github.com/ezachrisen/mailsignal/yamlstore"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = withFile(validate)
	case "show":
		err = withFile(show)
	case "comparisons":
		err = comparisons()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "signalsctl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: signalsctl validate|show <definitions.yaml>")
	fmt.Fprintln(os.Stderr, "       signalsctl comparisons")
}

func withFile(fn func(path string) error) error {
	if len(os.Args) < 3 {
		usage()
		os.Exit(2)
	}
	return fn(os.Args[2])
}

func validate(path string) error {
	defs, err := yamlstore.LoadFile(path)
	if err != nil {
		return err
	}
	if _, err := mailsignal.NewCatalog(nil, defs...); err != nil {
		return err
	}
	fmt.Printf("%s: %d definitions OK\n", path, len(defs))
	return nil
}

func show(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	defs, err := yamlstore.LoadFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s, modified %s)\n", path, humanize.Bytes(uint64(fi.Size())), humanize.Time(fi.ModTime()))
	for _, d := range defs {
		fmt.Println(d.String())
	}
	return nil
}

func comparisons() error {
	for _, name := range mailsignal.DefaultRegistry().Names() {
		fmt.Println(name)
	}
	return nil
}
