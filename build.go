//go:build ignore

// build.go - SalesPulse Build System
// Usage: go run build.go [-target=TARGET]
// Targets: all, web, report, licensegen, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	version = "1.0.0"
	module  = "salespulse"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose   bool
	GOOS      string
	GOARCH    string
	GitCommit string
}

var (
	rootDir string
	distDir string

	// Executable names (key = source dir name, value = output name)
	executables = map[string]string{
		"web":        "salespulse",
		"report":     "salespulse-report",
		"licensegen": "salespulse-licensegen",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run the build from the repository root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("os", runtime.GOOS, "Target operating system")
	goarch := flag.String("arch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	buildCtx := &BuildContext{
		Verbose:   *verbose,
		GOOS:      *goos,
		GOARCH:    *goarch,
		GitCommit: gitCommit(),
	}

	switch *target {
	case "all":
		buildAll(buildCtx)
	case "web", "report", "licensegen":
		prepareDirectories(buildCtx.Verbose)
		buildExecutable(*target, buildCtx)
	case "clean":
		clean(buildCtx.Verbose)
	case "test":
		runTests(buildCtx.Verbose)
	case "release":
		buildRelease(buildCtx)
	default:
		showHelp()
		os.Exit(1)
	}

	duration := time.Since(startTime)
	printSuccess(fmt.Sprintf("Build completed in %s", duration.Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        SalesPulse - Build System          " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// Build all executables and copy the default rules next to them
func buildAll(ctx *BuildContext) {
	printInfo("Building all components...")

	prepareDirectories(ctx.Verbose)
	for name := range executables {
		buildExecutable(name, ctx)
	}
	copyConfigFiles(ctx.Verbose)

	printSuccess("All components built successfully!")
}

func buildExecutable(name string, ctx *BuildContext) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, ctx.GOOS, ctx.GOARCH))

	outputPath := filepath.Join(distDir, exeName)
	ldflags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s -X %s/pkg/contracts.GitCommit=%s",
		module, time.Now().Format(time.RFC3339), module, ctx.GitCommit)

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

func clean(verbose bool) {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to remove %s: %v", distDir, err))
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Removed %s\n", distDir)
	}
	printSuccess("Build artifacts cleaned")
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

// Build release version with a VERSION.txt next to the binaries
func buildRelease(ctx *BuildContext) {
	printInfo("Building release version...")

	clean(ctx.Verbose)
	buildAll(ctx)

	versionFile := filepath.Join(distDir, "VERSION.txt")
	content := fmt.Sprintf("SalesPulse v%s\nCommit: %s\nBuilt: %s\n",
		version, ctx.GitCommit, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(versionFile, []byte(content), 0644); err != nil {
		printWarning(fmt.Sprintf("Failed to write %s: %v", versionFile, err))
	}

	printSuccess("Release build completed")
}

func prepareDirectories(verbose bool) {
	for _, dir := range []string{distDir, filepath.Join(distDir, "data"), filepath.Join(distDir, "reports")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			printError(fmt.Sprintf("Failed to create %s: %v", dir, err))
			os.Exit(1)
		}
		if verbose {
			fmt.Printf("Created %s\n", dir)
		}
	}
}

func copyConfigFiles(verbose bool) {
	src := filepath.Join(rootDir, "internal", "config", "rules.yaml")
	dest := filepath.Join(distDir, "rules.yaml")

	data, err := os.ReadFile(src)
	if err != nil {
		printWarning(fmt.Sprintf("Rules file not copied: %v", err))
		return
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		printWarning(fmt.Sprintf("Rules file not copied: %v", err))
		return
	}
	if verbose {
		fmt.Printf("Copied %s\n", dest)
	}
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all         Build every executable into dist/")
	fmt.Println("  web         Build the HTTP service")
	fmt.Println("  report      Build the offline report command")
	fmt.Println("  licensegen  Build the license registry tool")
	fmt.Println("  clean       Remove dist/")
	fmt.Println("  test        Run the Go tests with the race detector")
	fmt.Println("  release     Clean, build all and write VERSION.txt")
}
