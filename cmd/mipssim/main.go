// Command mipssim loads a boot ROM image and runs it on a single
// R3000-style core, either free-running to completion or under the
// interactive line monitor.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yysung1123/SIMP/internal/bus"
	"github.com/yysung1123/SIMP/internal/cpu"
	"github.com/yysung1123/SIMP/internal/monitor"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("mipssim", flag.ContinueOnError)
	interactive := fs.Bool("monitor", false, "drop into the interactive monitor instead of free-running")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: mipssim [-monitor] <path-to-boot-image>\n")
		return 2
	}

	image, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mipssim: %v\n", err)
		return 1
	}

	b := bus.New(image)
	c := cpu.New(b)

	if *interactive {
		m := monitor.New(c, os.Stdout, int(os.Stdin.Fd()))
		if err := m.Run(os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "mipssim: monitor: %v\n", err)
			return 1
		}
		fmt.Print(c.DumpRegisters())
		return 0
	}

	if err := c.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "mipssim: %v\n", err)
		fmt.Print(c.DumpRegisters())
		return 0
	}
	fmt.Print(c.DumpRegisters())
	return 0
}
