// Command asm assembles a Pendragon source file into a binary image.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stephenwhippuk/pendragon/asm"
)

func main() {
	var (
		outFile     = flag.String("o", "", "output binary path (default: input name with .bin extension)")
		verboseMode = flag.Bool("v", false, "print the total assembly time to stderr on success")
		verboseLong = flag.Bool("verbose", false, "alias for -v")
	)
	flag.Parse()
	verbose := *verboseMode || *verboseLong

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: asm <source.asm> -o <output.bin>")
		os.Exit(1)
	}
	sourcePath := flag.Arg(0)

	outPath := *outFile
	if outPath == "" {
		ext := filepath.Ext(sourcePath)
		outPath = strings.TrimSuffix(sourcePath, ext) + ".bin"
	}

	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	start := time.Now()
	programName := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
		os.Exit(1)
	}
	defer out.Close()

	if err := asm.AssembleToImage(out, string(raw), sourcePath, programName); err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		if !strings.HasSuffix(err.Error(), "\n") {
			fmt.Fprintln(os.Stderr)
		}
		os.Exit(1)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "assembled %s -> %s in %s\n", sourcePath, outPath, time.Since(start))
	}
}
