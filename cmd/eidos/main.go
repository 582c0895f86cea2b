// Eidos is a standalone driver for the Eidos scripting core: it runs a
// script file, an inline -c command, or a line-at-a-time REPL over stdin,
// against a fresh intrinsic-constants/defined-constants/variables scope
// chain and the built-in function registry.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/diag"
	"eidos.dev/eidos/pkg/interp"
	"eidos.dev/eidos/pkg/intern"
	"eidos.dev/eidos/pkg/lexer"
	"eidos.dev/eidos/pkg/parser"
	"eidos.dev/eidos/pkg/registry"
	"eidos.dev/eidos/pkg/symtab"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/token"
	"eidos.dev/eidos/pkg/value"
)

// nameValueList collects repeated -e name=expr flags in order, since
// flag.String only ever keeps the last occurrence.
type nameValueList []string

func (l *nameValueList) String() string { return strings.Join(*l, ",") }

func (l *nameValueList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

var (
	constantDefs nameValueList
	finalOptional = flag.Bool("final-semicolon-optional", false,
		"tolerate a missing trailing ';' on the last top-level statement")
	command = flag.String("c", "", "run this string as the script instead of reading a file or stdin")
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: eidos [flags] [script]")
	fmt.Fprintln(os.Stderr, "flags:")
	flag.PrintDefaults()
}

func main() {
	flag.Var(&constantDefs, "e", "define a command-line constant as name=expr; may be repeated")
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) > 1 {
		usage()
		os.Exit(2)
	}

	names := intern.New()
	values := value.NewPool(0)
	root := symtab.NewIntrinsicScope(names, values)
	variables := symtab.NewChild(symtab.Variables, root)
	functions := registry.Builtins()

	for _, def := range constantDefs {
		if err := installCommandLineConstant(def, variables, names, values, functions); err != nil {
			diag.ShowError(os.Stderr, err)
			os.Exit(2)
		}
	}

	switch {
	case *command != "":
		os.Exit(runScript("-c", *command, variables, names, values, functions))
	case len(args) == 1:
		src, err := os.ReadFile(args[0])
		if err != nil {
			diag.Complainf("eidos: %v", err)
			os.Exit(2)
		}
		os.Exit(runScript(args[0], string(src), variables, names, values, functions))
	default:
		repl(variables, names, values, functions)
	}
}

// installCommandLineConstant implements spec §6's command-line constant
// pipeline: split on the first '=', verify the left side is a legal,
// non-reserved identifier, evaluate the right side as an expression in an
// ephemeral scope chained under the real variable scope (so it can see
// intrinsics and constants installed by earlier -e flags but can never
// leak a binding of its own), then install the result as a defined
// constant. A missing '=' or an illegal identifier is reported as a
// *diag.Error pointing at the offending flag text, since this pipeline runs
// before any script-position context exists for a core term.Diagnostic to
// attach to; a parse or evaluation error in the expression already comes
// back as one of those and is returned unwrapped.
func installCommandLineConstant(def string, variables *symtab.Scope, names *intern.Table, values *value.Pool, functions *registry.Map) error {
	eq := strings.IndexByte(def, '=')
	if eq < 0 {
		return &diag.Error{
			Type:    "malformed command-line constant",
			Message: "expected name=expr",
			Context: *diag.NewContext("-e", def, diag.Ranging{From: 0, To: len(def)}),
		}
	}
	name, expr := def[:eq], def[eq+1:]
	if !isLegalIdentifier(name) {
		return &diag.Error{
			Type:    "malformed command-line constant",
			Message: fmt.Sprintf("%q is not a legal identifier", name),
			Context: *diag.NewContext("-e", def, diag.Ranging{From: 0, To: eq}),
		}
	}

	stream := term.NewStream("-e "+def, expr, term.Throws)
	ephemeral := symtab.NewChild(symtab.Variables, variables)
	v, err := evalExpr(expr, ephemeral, names, values, functions, stream)
	if err != nil {
		return err
	}

	id := names.Intern(name)
	return variables.DefineConstantForSymbol(id, v, values, names, stream)
}

// isLegalIdentifier reports whether name could be a user-defined
// identifier: non-empty, starts with a letter or underscore, continues
// with letters/digits/underscores, and is not one of the lexer's reserved
// words (spec §6: "not a reserved word or intrinsic constant name").
// Intrinsic constant collisions are not checked here: they are caught
// uniformly by DefineConstantForSymbol's own RedefinitionOfConstant check
// against the scope chain, which already covers every already-bound name,
// reserved or not.
func isLegalIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	_, reserved := token.Keywords[name]
	return !reserved
}

// evalExpr lexes and parses src as a single interpreter block and
// evaluates it against scope, returning the block's result value.
func evalExpr(src string, scope *symtab.Scope, names *intern.Table, values *value.Pool, functions *registry.Map, stream *term.Stream) (*value.Value, error) {
	toks, err := lexer.New(src, token.NewPool(0), stream).Tokenize()
	if err != nil {
		return nil, err
	}
	p := parser.New(toks, ast.NewPool(0), values, stream)
	p.FinalSemicolonOptional = true
	block, err := p.ParseInterpreterBlock()
	if err != nil {
		return nil, err
	}
	ip := interp.New(names, values, scope, functions, stream, nil)
	return ip.EvaluateInterpreterBlock(block, true)
}

// runScript runs one script to completion in exits mode, so a diagnostic
// prints a source-position caret diagram and the process terminates with a
// nonzero status (spec §4.7's "exits" policy, the mode a standalone driver
// uses as opposed to an embedding host's "throws" mode). It returns the
// process exit status for main to propagate, since the Stream itself calls
// os.Exit only on an actual diagnostic, not on a clean run.
func runScript(name, src string, variables *symtab.Scope, names *intern.Table, values *value.Pool, functions *registry.Map) int {
	stream := term.NewStream(name, src, term.Exits)
	toks, err := lexer.New(src, token.NewPool(0), stream).Tokenize()
	if err != nil {
		return 1
	}
	p := parser.New(toks, ast.NewPool(0), values, stream)
	p.FinalSemicolonOptional = *finalOptional
	block, err := p.ParseInterpreterBlock()
	if err != nil {
		return 1
	}
	ip := interp.New(names, values, variables, functions, stream, nil)
	result, err := ip.EvaluateInterpreterBlock(block, true)
	if err != nil {
		return 1
	}
	if result != value.NullValue {
		result.StreamTo(os.Stdout)
		fmt.Fprintln(os.Stdout)
	}
	return 0
}

// repl runs a minimal line-at-a-time read-eval-print loop over stdin: each
// line is lexed, parsed and evaluated as its own interpreter block against
// the shared variables scope, so bindings persist across lines the way a
// host's interactive session would expect. Parse and runtime errors are
// reported and the loop continues rather than terminating the process,
// since an interactive user expects to retry after a typo.
func repl(variables *symtab.Scope, names *intern.Table, values *value.Pool, functions *registry.Map) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		stream := term.NewStream("<repl>", line, term.Throws)
		v, err := evalExpr(line, variables, names, values, functions, stream)
		if err != nil {
			diag.ShowError(os.Stderr, err)
			continue
		}
		if v != value.NullValue {
			v.StreamTo(os.Stdout)
			fmt.Fprintln(os.Stdout)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		diag.Complainf("eidos: %v", err)
		os.Exit(1)
	}
}
