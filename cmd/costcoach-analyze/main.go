// costcoach-analyze runs one cost analysis from the command line, either
// in-process or against a running costcoach server, and prints the result
// envelope as JSON or as the markdown report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/joelkehle/costcoach/internal/apiclient"
	"github.com/joelkehle/costcoach/internal/costanalysis"
)

func main() {
	var (
		archetype  = flag.String("archetype", "", "Business archetype (manufacturing, resale, service, hybrid or Spanish names)")
		inputPath  = flag.String("input", "", "Path to JSON input file (\"-\" for stdin)")
		format     = flag.String("format", "json", "Output format: json or markdown")
		outputPath = flag.String("output", "", "Output path (defaults to stdout)")
		serverURL  = flag.String("server", "", "Base URL of a running costcoach server (default: run in-process)")
	)
	flag.Parse()

	_ = godotenv.Load()

	if *archetype == "" {
		log.Fatal("missing required -archetype")
	}
	if *inputPath == "" {
		log.Fatal("missing required -input")
	}
	if *format != "json" && *format != "markdown" {
		log.Fatalf("unknown -format %q (want json or markdown)", *format)
	}

	input, err := readInput(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	out, err := run(ctx, *serverURL, *archetype, input, *format)
	if err != nil {
		log.Fatal(err)
	}
	if err := writeOutput(*outputPath, out); err != nil {
		log.Fatalf("write output: %v", err)
	}
}

// run produces the requested rendering. Validation errors are part of the
// result envelope, not a failure: the command exits 0 and prints them.
func run(ctx context.Context, serverURL, archetype string, input map[string]any, format string) (string, error) {
	if serverURL != "" {
		client := apiclient.NewClient(serverURL)
		if format == "markdown" {
			report, err := client.Report(ctx, archetype, input)
			if err != nil {
				return "", fmt.Errorf("remote report: %w", err)
			}
			return report, nil
		}
		result, err := client.Analyze(ctx, archetype, input)
		if err != nil {
			return "", fmt.Errorf("remote analysis: %w", err)
		}
		return marshalResult(result)
	}

	result := costanalysis.Analyze(archetype, input)
	if format == "markdown" {
		return costanalysis.BuildReport(result, time.Now()), nil
	}
	return marshalResult(result)
}

func marshalResult(result costanalysis.Result) (string, error) {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b) + "\n", nil
}

func readInput(path string) (map[string]any, error) {
	var blob []byte
	var err error
	if path == "-" {
		blob, err = io.ReadAll(os.Stdin)
	} else {
		blob, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var input map[string]any
	if err := json.Unmarshal(blob, &input); err != nil {
		return nil, fmt.Errorf("decode input JSON: %w", err)
	}
	return input, nil
}

func writeOutput(path, content string) error {
	if path == "" {
		_, err := fmt.Print(content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
