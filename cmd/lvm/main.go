// Command lvm loads and runs a Pendragon binary image.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/stephenwhippuk/pendragon/config"
	"github.com/stephenwhippuk/pendragon/cpu"
	"github.com/stephenwhippuk/pendragon/image"
	"github.com/stephenwhippuk/pendragon/inspector"
	"github.com/stephenwhippuk/pendragon/vm"
)

func main() {
	var (
		maxCycles  = flag.Uint64("max-cycles", 0, "override the configured cycle limit (0 keeps the config/default value)")
		configPath = flag.String("config", "", "explicit config file (default: platform config path)")
		inspect    = flag.Bool("inspect", false, "launch the interactive inspector instead of batch-running")
		stackSize  = flag.Uint64("stack-size", 0, "override the stack context capacity in bytes")
		codeSize   = flag.Uint64("code-size", 0, "override the code context capacity in bytes")
		dataSize   = flag.Uint64("data-size", 0, "override the data context capacity in bytes")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: lvm <program.bin> <load-address-decimal-or-hex>")
		os.Exit(1)
	}
	programPath := flag.Arg(0)
	loadAddr, err := parseAddress(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid load address %q: %v\n", flag.Arg(1), err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	vmCfg := vm.DefaultConfig()
	vmCfg.StackCapacity = cfg.Execution.StackCapacity
	vmCfg.CodeCapacity = cfg.Execution.CodeCapacity
	vmCfg.DataCapacity = cfg.Execution.DataCapacity
	vmCfg.MaxCycles = cfg.Execution.MaxCycles
	if *maxCycles != 0 {
		vmCfg.MaxCycles = *maxCycles
	}
	if *stackSize != 0 {
		vmCfg.StackCapacity = *stackSize
	}
	if *codeSize != 0 {
		vmCfg.CodeCapacity = *codeSize
	}
	if *dataSize != 0 {
		vmCfg.DataCapacity = *dataSize
	}

	f, err := os.Open(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programPath, err)
		os.Exit(1)
	}
	img, err := image.Read(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programPath, err)
		os.Exit(1)
	}

	syscalls := cpu.NewSyscallTable()
	for name, n := range cfg.Syscalls.Register {
		if err := syscalls.Register(n, unregisteredSyscall(name)); err != nil {
			fmt.Fprintf(os.Stderr, "registering syscall %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	machine, err := vm.Load(img, loadAddr, vmCfg, syscalls, os.Stdout, os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *inspect {
		format := inspector.Hex
		if cfg.Inspector.NumberFormat == "dec" {
			format = inspector.Decimal
		}
		tui := inspector.NewTUI(machine.CPU, format)
		if err := tui.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := machine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// unregisteredSyscall is the placeholder handler config-registered syscall
// numbers get until a real implementation is wired in by an embedder of
// this package; it exists purely so a config entry can reserve a number
// and fail loudly if invoked rather than silently doing nothing.
func unregisteredSyscall(name string) cpu.Syscall {
	return func(c *cpu.CPU) error {
		return fmt.Errorf("syscall %q has no handler wired in this build", name)
	}
}
