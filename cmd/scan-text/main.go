// Command scan-text interprets OCR text files without calling an OCR provider.
// It is handy for tuning extraction rules against a folder of saved transcripts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/fin-tracker/internal/scanning"
)

type fileResult struct {
	File string `json:"file"`
	scanning.ScanResult
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := ff.NewFlagSet("scan-text")
	var (
		concurrency = fs.IntLong("concurrency", runtime.NumCPU(), "Files interpreted in parallel")
		quiet       = fs.BoolLong("quiet", "Hide the progress bar")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("SCAN_TEXT")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}
	if *concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}

	files := fs.GetArgs()
	if len(files) == 0 {
		text, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		return encode(stdout, []fileResult{{File: "-", ScanResult: scanning.Interpret(string(text))}})
	}

	results, err := interpretFiles(ctx, files, *concurrency, progressWriter(stderr, *quiet))
	if err != nil {
		return err
	}
	return encode(stdout, results)
}

// interpretFiles reads and interprets every file, keeping the input order
func interpretFiles(ctx context.Context, files []string, concurrency int, progress io.Writer) ([]fileResult, error) {
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("interpreting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	results := make([]fileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			results[i] = fileResult{File: path, ScanResult: scanning.Interpret(string(text))}
			bar.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	bar.Finish()
	return results, nil
}

func progressWriter(stderr io.Writer, quiet bool) io.Writer {
	if quiet {
		return io.Discard
	}
	return stderr
}

func encode(w io.Writer, results []fileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	return nil
}
