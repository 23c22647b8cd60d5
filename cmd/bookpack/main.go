// Command bookpack is a minimal smoke-test harness, not a CLI surface: it
// takes a text-layout XML path, a media/table XML path, and an optional
// directory to resolve media source files against, writes the resulting
// DocBook document to stdout, and writes any rendered sidecar files (§6)
// next to it. Flag parsing, subcommands, and config files are explicitly
// out of scope (§1 external interfaces).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsawler/bookpack"
)

func main() {
	if len(os.Args) != 3 && len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: bookpack <text-layout.xml> <media-table.xml> [media-dir]")
		os.Exit(2)
	}

	textLayout, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "bookpack:", err)
		os.Exit(1)
	}
	defer textLayout.Close()

	mediaTable, err := os.Open(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, "bookpack:", err)
		os.Exit(1)
	}
	defer mediaTable.Close()

	mediaDir := filepath.Dir(os.Args[2])
	if len(os.Args) == 4 {
		mediaDir = os.Args[3]
	}

	conv := bookpack.Open(textLayout, mediaTable).
		WithMediaSource(func(file string) ([]byte, error) {
			return os.ReadFile(filepath.Join(mediaDir, file))
		})

	result, err := conv.Convert()
	if err != nil {
		fmt.Fprintln(os.Stderr, "bookpack:", err)
		os.Exit(1)
	}

	if _, err := result.DocBook.WriteTo(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "bookpack:", err)
		os.Exit(1)
	}

	for _, sc := range result.Sidecars {
		if err := os.WriteFile(sc.Filename, sc.Data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "bookpack: writing sidecar:", err)
			continue
		}
		fmt.Fprintln(os.Stderr, "wrote sidecar:", sc.Filename)
	}

	for _, w := range result.Summary.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w.Error())
	}
}
