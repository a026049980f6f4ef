// Command cclang-check typechecks a single contract module supplied
// as JSON and reports the result. Built on a cobra command tree
// rather than the flag package, since it carries more than one
// subcommand worth separating.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cclang/typecheck/internal/check"
	"github.com/cclang/typecheck/internal/jsonmodule"
	"github.com/cclang/typecheck/internal/registry"
)

var version = "dev"

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cclang-check",
		Short:        "Typecheck a contract module",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	var (
		policyPath string
		concurrent bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Typecheck a module read from a file, or stdin if no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args)
			if err != nil {
				return err
			}
			return runCheck(raw, policyPath, concurrent, verbose)
		},
	}

	cmd.Flags().StringVar(&policyPath, "policy", "", "path to a YAML policy file (defaults to the built-in policy)")
	cmd.Flags().BoolVar(&concurrent, "concurrent", false, "typecheck transitions concurrently instead of sequentially")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit structured logs of each checking phase")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cclang-check %s\n", bold(version))
		},
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

func runCheck(raw []byte, policyPath string, concurrent, verbose bool) error {
	mod, adts, err := jsonmodule.Decode(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("decode error"), err)
		return err
	}

	policy, err := registry.LoadPolicy(policyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("policy error"), err)
		return err
	}

	var logger *zap.Logger
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer logger.Sync()
	}

	deps := &check.Deps{
		ADTs:       adts,
		Builtins:   registry.NewDefaultBuiltinDictionary(),
		Blockchain: registry.NewDefaultBlockchainRegistry(),
		Policy:     policy,
		Implicit:   registry.NewDefaultImplicitParams(),
		Logger:     logger,
	}

	typeFn := check.TypeModule
	if concurrent {
		typeFn = check.TypeModuleConcurrent
	}
	typed, problems := typeFn(deps, mod)

	if len(problems) == 0 {
		fmt.Printf("%s %d transition(s), %d field(s) typed clean\n", green("OK"), len(typed.Transitions), len(typed.Fields))
		return nil
	}

	for _, d := range problems {
		fmt.Fprintf(os.Stderr, "%s %s\n", red(string(d.Code)), d.Error())
	}
	return fmt.Errorf("%d diagnostic(s)", len(problems))
}
