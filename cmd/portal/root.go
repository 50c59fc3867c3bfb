package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/internal/config"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/internal/platform"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

var (
	verbose  bool
	adapter  string
	uri      string
	envFile  string
	asClient string
	cfg      *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Client engagement engine for a consulting firm",
	Long: `portal keeps client engagement records: timeline progress, documents,
payments and the notification feeds between the firm and its clients.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		files := []string{}
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg, err = config.Load(files...)
		if err != nil {
			fatal("Failed to load configuration", err)
		}
		if cmd.Flags().Changed("adapter") {
			cfg.Adapter = adapter
		}
		if uri != "" {
			cfg.URI = uri
		}
		if err := cfg.Validate(); err != nil {
			fatal("Invalid configuration", err)
		}

		level := cfg.SlogLevel()
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "fs", "Storage adapter (fs, memory, sqlite, postgres, s3)")
	rootCmd.PersistentFlags().StringVar(&uri, "uri", "", "Record file, DSN or s3://bucket/key (defaults to PORTAL_URI)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load (defaults to .env)")
	rootCmd.PersistentFlags().StringVar(&asClient, "as", "", "Act as the client with this id instead of the admin")
}

// openService builds the engine from the loaded configuration.
func openService(extra ...portal.Option) *core.Service {
	opts := append(platform.FromConfig(cfg), portal.WithLogger(slog.Default()))
	opts = append(opts, extra...)
	svc, err := portal.New(cfg.URI, opts...)
	if err != nil {
		fatal("Failed to initialize portal", err)
	}
	return svc
}

// actor returns the session the command runs under.
func actor(svc *core.Service) core.Session {
	if asClient == "" {
		return core.AdminSession()
	}
	c, err := svc.Get(asClient)
	if err != nil {
		fatal("Unknown client", err)
	}
	return core.ClientSession(c)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("Failed to encode JSON", err)
	}
	fmt.Println(string(data))
}
