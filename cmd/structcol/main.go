package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/structcol/pkg/config"
	"github.com/ajitpratap0/structcol/pkg/dist"
	"github.com/ajitpratap0/structcol/pkg/logger"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

var version = "0.1.0"

// app carries state shared by the subcommands
type app struct {
	configFile string
	cfg        *config.Config
	registry   *structured.Registry
	out        io.Writer
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, registry: structured.Default()}

	root := &cobra.Command{
		Use:   "structcol",
		Short: "structcol - structured distribution columns",
		Long: `structcol stores columns of probability distributions as fixed-layout
float64 records and persists tables of them as Parquet, Arrow, Avro or
compressed snapshots on local disk, S3 or GCS.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to YAML configuration file")
	root.SetOut(out)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "structcol v%s\n", version)
			fmt.Fprintf(a.out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(a.out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(a.dtypesCmd(), a.parseCmd(), a.demoCmd(), a.inspectCmd(), a.convertCmd())
	return root
}

// setup loads configuration, initializes logging and registers dtypes
func (a *app) setup() error {
	if a.configFile != "" {
		cfg, err := config.Load(a.configFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
	} else {
		a.cfg = config.Default()
	}

	if err := logger.Init(a.cfg.Logging); err != nil {
		return err
	}
	if err := dist.RegisterBuiltins(a.registry); err != nil {
		return err
	}
	for _, name := range a.cfg.Dtypes {
		l, err := a.registry.Lookup(name)
		if err != nil {
			return err
		}
		if err := a.registry.Register(l); err != nil {
			return err
		}
	}

	logger.Component("cli").Debug("configured",
		zap.String("config", a.configFile),
		zap.String("format", a.cfg.Output.Format),
		zap.String("storage", string(a.cfg.Storage.Kind)))
	return nil
}
