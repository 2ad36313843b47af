//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles every executable
func Build() error {
	mg.Deps(BuildDecoder)
	mg.Deps(BuildMeasureBlocks)
	fmt.Println("Compilation finished")
	return nil
}

func BuildDecoder() error {
	fmt.Println("Building decoder executable...")
	return goCommand("build", "-o", "./bin/decoder", "./decoder")
}

func BuildMeasureBlocks() error {
	fmt.Println("Building measureBlocks executable...")
	return goCommand("build", "-o", "./bin/measureBlocks", "./measureBlocks")
}

// Test runs the package tests, HDF5 included
func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./...")
}

// goCommand runs the go tool with the HDF5 cgo flags taken from the environment
func goCommand(args ...string) error {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
