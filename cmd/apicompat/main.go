// Command apicompat checks a revised OpenAPI document against a base one and
// fails on backward-incompatible changes. Without -revision it checks the
// document generated into the docs package.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"pulse/docs"
	"pulse/internal/apicompat"
)

const (
	exitOK       = 0
	exitBreaking = 1
	exitUsage    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("apicompat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	basePath := fs.String("base", "", "base swagger.yaml or swagger.json")
	revisionPath := fs.String("revision", "", "revised document (defaults to the generated docs)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *basePath == "" {
		fmt.Fprintln(stderr, "usage: apicompat -base <path> [-revision <path>]")
		return exitUsage
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(stderr, "base: %v\n", err)
		return exitBreaking
	}
	var revision apicompat.Spec
	if *revisionPath == "" {
		revision, err = apicompat.Parse([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		revision, err = loadFile(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(stderr, "revision: %v\n", err)
		return exitBreaking
	}

	issues := apicompat.Compare(base, revision)
	if len(issues) == 0 {
		fmt.Fprintln(stdout, "no breaking changes")
		return exitOK
	}
	fmt.Fprintf(stderr, "%d breaking change(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(stderr, "  %s\n", issue)
	}
	return exitBreaking
}

func loadFile(path string) (apicompat.Spec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apicompat.Spec{}, err
	}
	return apicompat.Parse(raw)
}
