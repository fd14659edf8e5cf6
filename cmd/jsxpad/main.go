package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kobzarvs/jsxpad/internal/app"
	"github.com/kobzarvs/jsxpad/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "jsxpad:", err)
		os.Exit(1)
	}
}

func run() error {
	a := app.New(afero.NewOsFs(), os.Stdout)
	var debugLog bool

	rootCmd := &cobra.Command{
		Use:           "jsxpad [file]",
		Short:         "A terminal editor for JSX markup",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := logger.Init(debugLog); err != nil {
				fmt.Fprintln(os.Stderr, "jsxpad: logging disabled:", err)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return a.Run(path)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write debug entries to the log file")

	if info, ok := debug.ReadBuildInfo(); ok {
		rootCmd.Version = info.Main.Version
	} else {
		rootCmd.Version = "unknown"
	}

	rootCmd.AddCommand(newRunCommand(a), newTokensCommand(a), newCommandsCommand(a))
	return rootCmd.ExecuteContext(context.Background())
}

func newRunCommand(a *app.App) *cobra.Command {
	var sels []string
	var write bool
	cmd := &cobra.Command{
		Use:   "run <command> <file>",
		Short: "Apply one editing command to a file and print the result",
		Long: "Apply one editing command to a file and print the result.\n" +
			"Selections are zero-based line:col or line:col-line:col (anchor-head).\n" +
			"Without --sel the selections saved by the previous run are reused.",
		Args: cobra.ExactArgs(2),
	}
	cmd.Flags().StringArrayVar(&sels, "sel", nil, "selection as line:col[-line:col], repeatable; the last is primary")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the result back to the file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts := app.CommandOptions{Write: write}
		for _, s := range sels {
			r, err := app.ParseRange(s)
			if err != nil {
				return err
			}
			opts.Selections = append(opts.Selections, r)
		}
		res, err := a.RunCommand(cmd.Context(), args[0], args[1], opts)
		if err != nil {
			return err
		}
		a.PrintCommandResult(res)
		return nil
	}
	return cmd
}

func newTokensCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the syntax tokens of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Tokens(args[0])
		},
	}
}

func newCommandsCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the editing commands",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.ListCommands()
		},
	}
}

