package main

import (
	"bufio"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gear6io/seaduck/pkg/errors"
)

// codeDecl is one `ErrX = errors.MustNewCode("pkg.name")` declaration.
type codeDecl struct {
	Name string
	Code string
	File string
	Line int
	Used bool
}

// Violation is a finding that fails the check.
type Violation struct {
	File    string
	Line    int
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s:%d: %s", v.File, v.Line, v.Message)
}

// Checker collects error code declarations and their uses across a tree.
type Checker struct {
	fset  *token.FileSet
	decls []*codeDecl
	uses  map[string]bool
	files []string
}

// NewChecker creates a new Checker
func NewChecker() *Checker {
	return &Checker{fset: token.NewFileSet(), uses: make(map[string]bool)}
}

// CheckDirectory parses every Go file under dir that no exclude path matches.
func (c *Checker) CheckDirectory(dir string, exclude []string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		slashed := filepath.ToSlash(path)
		for _, ex := range exclude {
			if strings.Contains(slashed+"/", ex) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		return c.checkFile(path)
	})
}

func (c *Checker) checkFile(path string) error {
	file, err := parser.ParseFile(c.fset, path, nil, 0)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	isTest := strings.HasSuffix(path, "_test.go")
	if !isTest {
		c.files = append(c.files, path)
	}

	declared := make(map[*ast.Ident]bool)
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, name := range spec.Names {
			if i >= len(spec.Values) {
				continue
			}
			if code, ok := mustNewCodeArg(spec.Values[i]); ok {
				declared[name] = true
				c.decls = append(c.decls, &codeDecl{
					Name: name.Name,
					Code: code,
					File: path,
					Line: c.fset.Position(name.Pos()).Line,
				})
			}
		}
		return true
	})

	if isTest {
		return nil
	}
	ast.Inspect(file, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Ident); ok && !declared[ident] && strings.HasPrefix(ident.Name, "Err") {
			c.uses[ident.Name] = true
		}
		return true
	})
	return nil
}

// mustNewCodeArg returns the literal passed to errors.MustNewCode.
func mustNewCodeArg(expr ast.Expr) (string, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "MustNewCode" {
		return "", false
	}
	if pkg, ok := sel.X.(*ast.Ident); !ok || pkg.Name != "errors" {
		return "", false
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	code, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return code, true
}

// Unused returns declarations whose name no non-test file references.
// Names are matched without their package, so a code shadowed by a
// same-named code elsewhere counts as used.
func (c *Checker) Unused() []Violation {
	var out []Violation
	for _, d := range c.decls {
		d.Used = c.uses[d.Name]
		if !d.Used {
			out = append(out, Violation{File: d.File, Line: d.Line, Message: fmt.Sprintf("%s (%s) is never used", d.Name, d.Code)})
		}
	}
	return out
}

// Invalid returns declarations whose code fails errors.NewCode or is
// declared more than once.
func (c *Checker) Invalid() []Violation {
	var out []Violation
	seen := make(map[string]*codeDecl)
	for _, d := range c.decls {
		if _, err := errors.NewCode(d.Code); err != nil {
			out = append(out, Violation{File: d.File, Line: d.Line, Message: err.Error()})
		}
		if first, ok := seen[d.Code]; ok {
			out = append(out, Violation{File: d.File, Line: d.Line, Message: fmt.Sprintf("code %q already declared at %s:%d", d.Code, first.File, first.Line)})
			continue
		}
		seen[d.Code] = d
	}
	return out
}

// Forbidden returns lines of non-test files matching any pattern.
func (c *Checker) Forbidden(patterns []string) ([]Violation, error) {
	var res []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}

	var out []Violation
	for _, path := range c.files {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(f)
		for line := 1; scanner.Scan(); line++ {
			for _, re := range res {
				if re.MatchString(scanner.Text()) {
					out = append(out, Violation{File: path, Line: line, Message: "forbidden pattern " + re.String()})
				}
			}
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Codes returns the declared codes sorted by code.
func (c *Checker) Codes() []string {
	codes := make([]string, 0, len(c.decls))
	for _, d := range c.decls {
		codes = append(codes, d.Code)
	}
	sort.Strings(codes)
	return codes
}
