//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var binaries = map[string]string{
	"bin/payslip-verify": "./cmd/verify",
	"bin/fetchtariffs":   "./cmd/fetchtariffs",
}

func tariffDir() string {
	if d := os.Getenv("TARIFF_DIR"); d != "" {
		return d
	}
	return "qst"
}

// Build tidies deps, then compiles both CLIs into ./bin.
func Build() error {
	mg.Deps(Tidy)
	for out, pkg := range binaries {
		fmt.Println(">> go build", pkg)
		if err := sh.Run("go", "build", "-o", out, pkg); err != nil {
			return err
		}
	}
	return nil
}

// Tariffs downloads and unpacks the ESTV withholding tax tariffs into
// TARIFF_DIR. Set YEAR to fetch a single year.
func Tariffs() error {
	args := []string{"run", "./cmd/fetchtariffs", "-d", tariffDir()}
	if y := os.Getenv("YEAR"); y != "" {
		args = append(args, "-year", y)
	}
	fmt.Println(">> fetching tariffs into", tariffDir())
	return sh.RunV("go", args...)
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts. Downloaded tariffs are kept.
func Clean() error {
	fmt.Println(">> Cleaning...")
	return os.RemoveAll("bin")
}

// Install installs the verify CLI to $GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.Run("go", "install", "./cmd/verify")
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}
