// Package main provides the CLI entry point for mdsheet-go.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ukaji3/mdsheet-go/internal/logging"
	"github.com/ukaji3/mdsheet-go/internal/rpc"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/output"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/patch"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/xlsx"
)

const apiVersion = "1"

var (
	outputPath string
	pretty     bool
	logLevel   string
	logFormat  string
	configPath string

	opsPath      string
	write        bool
	showDiff     bool
	diffContext  int
	importSheets []string

	config = mdsheet.DefaultConfig()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mdsheet",
		Short: "Edit spreadsheet tables embedded in Markdown",
		Long: `mdsheet-go keeps a workbook of GFM tables embedded in a Markdown file in sync
with structural edits, reporting the minimal text range each edit replaces.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "JSON configuration file")
	rootCmd.PersistentFlags().AddFlagSet(configFlags(&config))

	stateCmd := &cobra.Command{
		Use:   "state [file.md]",
		Short: "Print the parsed workbook and file structure as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runState,
	}
	stateCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	execCmd := &cobra.Command{
		Use:   "exec [file.md]",
		Short: "Apply a list of operations to a Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE:  runExec,
	}
	execCmd.Flags().StringVar(&opsPath, "ops", "", "JSON file with [{\"method\": ..., \"params\": {...}}, ...]")
	execCmd.Flags().BoolVar(&write, "write", false, "Write the result back to the file")
	execCmd.Flags().BoolVar(&showDiff, "diff", false, "Print a line diff instead of the results")
	execCmd.Flags().IntVar(&diffContext, "context", 3, "Unchanged lines shown around each change with --diff")
	execCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	_ = execCmd.MarkFlagRequired("ops")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve session methods as JSON-RPC 2.0 over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	exportCmd := &cobra.Command{
		Use:   "export [file.md]",
		Short: "Export the workbook to an Excel file",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: input name with .xlsx)")

	importCmd := &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Convert an Excel file into a Markdown workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	importCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Markdown file to write or update (default: stdout)")
	importCmd.Flags().StringSliceVar(&importSheets, "sheet", nil, "Worksheets to import (default: all)")

	rootCmd.AddCommand(stateCmd, execCmd, serveCmd, exportCmd, importCmd)
	return rootCmd
}

// configFlags binds the Markdown layout settings. Tri-state booleans are only set when the
// flag is given, see loadConfig.
func configFlags(cfg *mdsheet.Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.StringVar(&cfg.RootMarker, "root-marker", "", "Line that opens the workbook region (default \"# Tables\")")
	fs.IntVar(&cfg.SheetHeaderLevel, "sheet-level", 0, "Heading level of sheets (default 2)")
	fs.IntVar(&cfg.TableHeaderLevel, "table-level", 0, "Heading level of tables (default 3)")
	fs.IntVar(&cfg.DocHeaderLevel, "doc-level", 0, "Heading level of document sections (default 1)")
	fs.StringVar(&cfg.ColumnSeparator, "separator", "", "Column separator (default \"|\")")
	fs.Bool("no-outer-pipes", false, "Write rows without leading and trailing separators")
	fs.Bool("keep-whitespace", false, "Keep whitespace around cell text")
	fs.Bool("no-description", false, "Do not capture table descriptions")
	return fs
}

// loadConfig merges the --config file under the flags given on the command line.
func loadConfig(cmd *cobra.Command) (mdsheet.Config, error) {
	cfg := mdsheet.DefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if cfg, err = mdsheet.ParseConfig(data); err != nil {
			return cfg, err
		}
	}
	fs := cmd.Flags()
	if fs.Changed("root-marker") {
		cfg.RootMarker = config.RootMarker
	}
	if fs.Changed("sheet-level") {
		cfg.SheetHeaderLevel = config.SheetHeaderLevel
	}
	if fs.Changed("table-level") {
		cfg.TableHeaderLevel = config.TableHeaderLevel
	}
	if fs.Changed("doc-level") {
		cfg.DocHeaderLevel = config.DocHeaderLevel
	}
	if fs.Changed("separator") {
		cfg.ColumnSeparator = config.ColumnSeparator
	}
	negated := map[string]**bool{
		"no-outer-pipes":  &cfg.RequireOuterPipes,
		"keep-whitespace": &cfg.StripWhitespace,
		"no-description":  &cfg.CaptureDescription,
	}
	for name, field := range negated {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetBool(name)
		if err != nil {
			return cfg, err
		}
		on := !v
		*field = &on
	}
	return cfg, nil
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(w, level, format), nil
}

// openSession reads a Markdown file into a new session.
func openSession(cmd *cobra.Command, path string) (*mdsheet.Session, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	session := mdsheet.NewSession(mdsheet.WithLogger(logger))
	if err := session.Initialize(string(text), cfg); err != nil {
		return nil, err
	}
	return session, nil
}

func runState(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	state, err := session.State()
	if err != nil {
		return err
	}
	jsonData, err := output.ToJSON(state, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

// Op is one entry of an --ops file.
type Op struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// OpResult reports the outcome of one Op.
type OpResult struct {
	Method string `json:"method"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

func readOps(path string) ([]Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ops: %w", err)
	}
	var ops []Op
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("invalid ops file: %w", err)
	}
	return ops, nil
}

// applyOps runs ops in order and stops at the first failure.
func applyOps(session *mdsheet.Session, ops []Op) ([]OpResult, error) {
	results := make([]OpResult, 0, len(ops))
	for i, op := range ops {
		resp := session.Call(op.Method, op.Params)
		results = append(results, OpResult{Method: op.Method, Result: resp.Result, Error: resp.Error, Kind: resp.Kind})
		if resp.Failed() {
			return results, fmt.Errorf("op %d (%s) failed: %s: %s", i, op.Method, resp.Kind, resp.Error)
		}
	}
	return results, nil
}

func runExec(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	session, err := openSession(cmd, inputPath)
	if err != nil {
		return err
	}
	ops, err := readOps(opsPath)
	if err != nil {
		return err
	}

	before := session.Text()
	results, err := applyOps(session, ops)
	out := cmd.OutOrStdout()
	if showDiff {
		fmt.Fprint(out, patch.Format(patch.Preview(before, session.Text()), diffContext))
	} else if jsonData, jerr := output.ToJSON(results, pretty); jerr == nil {
		fmt.Fprintln(out, string(jsonData))
	}
	if err != nil {
		return err
	}

	if write && session.Text() != before {
		if err := os.WriteFile(inputPath, []byte(session.Text()), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	server := rpc.NewServer(apiVersion, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	rpc.RegisterSession(server, mdsheet.NewSession(mdsheet.WithLogger(logger)))
	logger.Info("rpc.serve", "api_version", apiVersion)
	return server.Serve(ctx)
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	session, err := openSession(cmd, inputPath)
	if err != nil {
		return err
	}
	target := outputPath
	if target == "" {
		target = inputPath[:len(inputPath)-len(filepath.Ext(inputPath))] + ".xlsx"
	}
	if err := xlsx.ExportFile(session.Workbook(), target); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}
	wb, err := xlsx.Import(inputPath, xlsx.Options{Sheets: importSheets})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if outputPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), parser.Render(wb, cfg.Schema()))
		return nil
	}

	text, err := os.ReadFile(outputPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read output: %w", err)
	}
	merged := mergeWorkbook(string(text), wb, cfg)
	if err := os.WriteFile(outputPath, []byte(merged), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// mergeWorkbook replaces the workbook region of text with wb, appending a region if the
// text has none.
func mergeWorkbook(text string, wb models.Workbook, cfg mdsheet.Config) string {
	p := patch.Workbook(wb, text, cfg.Schema(), parser.Codec{})
	return patch.Apply(text, p)
}
