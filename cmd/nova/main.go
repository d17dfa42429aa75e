package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"

	"github.com/novalang/nova/config"
	"github.com/novalang/nova/engine"
	"github.com/novalang/nova/novaerr"
	"github.com/novalang/nova/version"
)

func main() {
	app := &cli.Command{
		Name:  "nova",
		Usage: "Nova core execution engine",
		Commands: []*cli.Command{
			runCommand,
			replCommand,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "code",
				Aliases: []string{"r"},
				Usage:   "Evaluate <code> directly instead of reading a file",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "Path to a YAML security-policy file (spec §6.2)",
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "Show version",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("version") {
				fmt.Println(version.Version())
				return nil
			}
			if code := cmd.String("code"); code != "" {
				return evalAndPrint(code, "<code>", cmd.String("policy"))
			}
			if cmd.Args().Len() > 0 {
				return runFile(cmd.Args().First(), cmd.String("policy"))
			}
			code, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			return evalAndPrint(string(code), "<stdin>", cmd.String("policy"))
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run a Nova source file",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "policy", Usage: "Path to a YAML security-policy file"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() == 0 {
			return fmt.Errorf("run requires a file argument")
		}
		return runFile(cmd.Args().First(), cmd.String("policy"))
	},
}

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "Start an interactive Nova shell",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "policy", Usage: "Path to a YAML security-policy file"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runREPL(cmd.String("policy"))
	},
}

func buildEngine(policyPath string) *engine.Engine {
	policy := config.Default()
	if policyPath != "" {
		if p, err := config.Load(policyPath); err == nil {
			policy = p
		} else {
			fmt.Fprintf(os.Stderr, "warning: could not load policy %s: %v\n", policyPath, err)
		}
	}
	e := engine.New(engine.WithSecurityPolicy(policy), engine.WithFrontend(stubFrontend{}))
	e.LoadModule("nova.json")
	e.LoadModule("nova.text")
	return e
}

func runFile(path, policyPath string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	e := buildEngine(policyPath)
	v, err := e.EvalNamed(string(src), path)
	if err != nil {
		printErr(err)
		os.Exit(1)
	}
	fmt.Println(v.CanonicalString())
	return nil
}

func evalAndPrint(src, name, policyPath string) error {
	e := buildEngine(policyPath)
	v, err := e.EvalNamed(src, name)
	if err != nil {
		printErr(err)
		os.Exit(1)
	}
	fmt.Println(v.CanonicalString())
	return nil
}

func printErr(err error) {
	if re, ok := err.(*novaerr.RuntimeError); ok {
		novaerr.Render(os.Stderr, re)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// runREPL drives an interactive shell over chzyer/readline, evaluating
// each line against one persistent Engine so global bindings survive
// across lines (spec §6.1).
func runREPL(policyPath string) error {
	e := buildEngine(policyPath)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "nova> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println(version.Version())
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		v, err := e.EvalREPL(line)
		if err != nil {
			printErr(err)
			continue
		}
		fmt.Println(v.CanonicalString())
	}
}
