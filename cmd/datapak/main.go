// Command datapak is the DataPak CLI front-end: create, list, extract, and
// info subcommands over the datapak package's Builder and Reader.
//
// The CLI is a thin collaborator (§1 of the format's design document): it
// parses argv, dispatches to the core package, and prints diagnostics. It
// holds no archive logic of its own.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/datapak/datapak"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	var verbose bool
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			verbose = true
		}
	}
	logger := newLogger(verbose)

	var err error
	switch args[0] {
	case "create":
		err = runCreate(args[1:], logger)
	case "list":
		err = runList(args[1:])
	case "extract":
		err = runExtract(args[1:])
	case "info":
		err = runInfo(args[1:])
	default:
		printUsage()
		return 1
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: datapak <command> [arguments]

commands:
  create  <archive.pak> <input_dir> [compression]
  list    <archive.pak>
  extract <archive.pak> <file_path> [output_path]
  info    <archive.pak>

flags:
  -v, --verbose   raise log level to debug`)
}

func runCreate(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Bool("verbose", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return errors.New("usage: datapak create <archive.pak> <input_dir> [compression]")
	}
	archivePath, inputDir := rest[0], rest[1]

	methodName := "deflate"
	if len(rest) >= 3 {
		methodName = rest[2]
	}
	method, err := datapak.ParseMethod(methodName)
	if err != nil {
		return fmt.Errorf("invalid compression %q: %w", methodName, err)
	}

	if *verbose {
		logger = newLogger(true)
	}

	builder := datapak.NewBuilder(method, datapak.WithBuilderLogger(logger))
	if err := builder.AddDirectory(inputDir, "", datapak.MethodNone); err != nil {
		return fmt.Errorf("scanning %s: %w", inputDir, err)
	}
	if err := builder.Build(archivePath); err != nil {
		os.Remove(archivePath) //nolint:errcheck // best-effort cleanup of a failed build
		return fmt.Errorf("building %s: %w", archivePath, err)
	}
	fmt.Printf("created %s with %d file(s)\n", archivePath, builder.FileCount())
	return nil
}

func runList(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: datapak list <archive.pak>")
	}
	reader, err := datapak.NewReader(args[0], datapak.BackingModeDisk)
	if err != nil {
		return err
	}
	defer reader.Close()

	files := reader.ListFiles()
	fmt.Printf("DataPak archive: %s\n", args[0])
	for _, name := range files {
		fmt.Println(name)
	}
	fmt.Printf("%d file(s)\n", len(files))
	return nil
}

func runExtract(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: datapak extract <archive.pak> <file_path> [output_path]")
	}
	archivePath, filePath := args[0], args[1]
	outputPath := filePath
	if len(args) >= 3 {
		outputPath = args[2]
	}

	reader, err := datapak.NewReader(archivePath, datapak.BackingModeDisk)
	if err != nil {
		return err
	}
	defer reader.Close()

	stream, err := reader.Open(filePath)
	if err != nil {
		return err
	}
	defer stream.Close()

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, stream); err != nil {
		return fmt.Errorf("extracting %s: %w", filePath, err)
	}
	fmt.Printf("extracted %s -> %s\n", filePath, outputPath)
	return nil
}

func runInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: datapak info <archive.pak>")
	}
	archivePath := args[0]

	info, err := os.Stat(archivePath)
	if err != nil {
		return err
	}

	reader, err := datapak.NewReader(archivePath, datapak.BackingModeDisk)
	if err != nil {
		return err
	}
	defer reader.Close()

	files := reader.ListFiles()

	fmt.Printf("path: %s\n", archivePath)
	fmt.Printf("size: %d bytes\n", info.Size())
	fmt.Printf("entries: %d\n", len(files))
	fmt.Printf("format: DataPak (.pak)\n")

	if len(files) == 0 {
		return nil
	}

	var compressedTotal, uncompressedTotal uint64
	for _, name := range files {
		compressedSize, uncompressedSize, _, ok := reader.Stat(name)
		if !ok {
			continue
		}
		compressedTotal += compressedSize
		uncompressedTotal += uncompressedSize
	}

	fmt.Printf("total uncompressed size: %d bytes\n", uncompressedTotal)
	if uncompressedTotal > 0 {
		ratio := float64(compressedTotal) / float64(uncompressedTotal)
		fmt.Printf("compressed / uncompressed: %.2f\n", ratio)
	}
	return nil
}
