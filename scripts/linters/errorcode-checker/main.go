// Command errorcode-checker verifies that error codes declared with
// errors.MustNewCode are well formed, unique and used, and that packages
// do not build ad-hoc errors with fmt.Errorf.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	var (
		dir        = flag.String("dir", ".", "directory to check")
		configPath = flag.String("config", "", "path to a YAML configuration file")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	checker := NewChecker()
	if err := checker.CheckDirectory(*dir, cfg.ExcludePaths); err != nil {
		fmt.Fprintf(os.Stderr, "failed to check %s: %v\n", *dir, err)
		os.Exit(2)
	}

	fmt.Printf("%d error codes declared\n", len(checker.Codes()))
	failed := report("invalid codes", checker.Invalid(), true)

	failed = report("unused codes", checker.Unused(), cfg.ExitOnUnused) || failed

	forbidden, err := checker.Forbidden(cfg.ForbiddenPatterns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to scan for forbidden patterns: %v\n", err)
		os.Exit(2)
	}
	failed = report("forbidden patterns", forbidden, cfg.ExitOnForbidden) || failed

	if failed {
		os.Exit(1)
	}
}

// report prints violations under title and returns whether they fail the run.
func report(title string, violations []Violation, fatal bool) bool {
	if len(violations) == 0 {
		return false
	}
	fmt.Printf("%s:\n", title)
	for _, v := range violations {
		fmt.Printf("  %s\n", v)
	}
	return fatal
}
