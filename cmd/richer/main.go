// Command richer normalizes rich-text editor markup and replays toolbar
// actions against it, for inspecting the editor engine from a shell.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/njchilds90/richer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

var (
	verbose   bool
	rulesPath string
	asJSON    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "richer",
	Short: "Normalize rich-text editor markup",
	Long: `richer runs the editor's normalization pipeline and toolbar actions
over HTML read from a file or stdin and prints the result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config = zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalize markup as pasted content",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		live, _ := cmd.Flags().GetBool("live")
		markup, err := readInput(args)
		if err != nil {
			return err
		}
		ed, err := newEditor()
		if err != nil {
			return err
		}

		var res richer.ContentResult
		if live {
			region, perr := richer.ParseRegion(markup)
			if perr != nil {
				return perr
			}
			res = ed.Process(region, nil)
		} else if res, err = ed.SetContent(richer.NewRegion(), nil, markup); err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply [file]",
	Short: "Apply a toolbar action at a caret position",
	Long: `apply parses the markup verbatim, places a caret and runs one action.

The caret is a path of child indices from the region, dot separated,
followed by ':' and an offset, e.g. "0.0:3" is offset 3 in the first
child of the first block.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, _ := cmd.Flags().GetString("action")
		caret, _ := cmd.Flags().GetString("caret")
		markup, err := readInput(args)
		if err != nil {
			return err
		}
		ed, err := newEditor()
		if err != nil {
			return err
		}
		region, err := richer.ParseRegion(markup)
		if err != nil {
			return err
		}
		node, off, err := resolveCaret(region, caret)
		if err != nil {
			return err
		}

		res, err := ed.Apply(&richer.ActionContext{
			Button:    richer.Button{Name: action},
			Region:    region,
			Selection: richer.Caret(node, off),
		})
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rules as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := newEditor()
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(ed.Rules())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "YAML rules file overlaid on the defaults")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print the full content result as JSON")

	normalizeCmd.Flags().Bool("live", false, "Treat input as typed content (no external filtering)")

	applyCmd.Flags().String("action", "", "Button name, e.g. list-ul, align-center, indent, table, bold")
	applyCmd.Flags().String("caret", "0:0", "Caret position as child-index path and offset")
	_ = applyCmd.MarkFlagRequired("action")

	rootCmd.AddCommand(normalizeCmd, applyCmd, rulesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newEditor() (*richer.Editor, error) {
	opts := []richer.Option{richer.WithLogger(logger)}
	if rulesPath != "" {
		rules, err := richer.LoadRules(rulesPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, richer.WithRules(rules))
	}
	return richer.New(opts...)
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func printResult(w io.Writer, res richer.ContentResult) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, res.Processed)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// resolveCaret turns "i.j.k:off" into a node under region and an offset.
func resolveCaret(region *html.Node, caret string) (*html.Node, int, error) {
	path, offText, found := strings.Cut(caret, ":")
	if !found {
		return nil, 0, fmt.Errorf("caret %q: missing offset", caret)
	}
	off, err := strconv.Atoi(offText)
	if err != nil {
		return nil, 0, fmt.Errorf("caret %q: %w", caret, err)
	}
	node := region
	if path == "" {
		return node, off, nil
	}
	for _, part := range strings.Split(path, ".") {
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, 0, fmt.Errorf("caret %q: %w", caret, err)
		}
		c := node.FirstChild
		for ; c != nil && i > 0; c = c.NextSibling {
			i--
		}
		if c == nil {
			return nil, 0, fmt.Errorf("caret %q: no child at %s", caret, part)
		}
		node = c
	}
	return node, off, nil
}
