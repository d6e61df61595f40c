package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tamcore/exploitscout/internal/config"
	"github.com/tamcore/exploitscout/internal/enrich"
	"github.com/tamcore/exploitscout/internal/github"
	"github.com/tamcore/exploitscout/internal/logging"
	"github.com/tamcore/exploitscout/internal/metrics"
	"github.com/tamcore/exploitscout/internal/nvd"
	"github.com/tamcore/exploitscout/internal/transport"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "exploitscout",
	Short: "Find CVEs for a product and rank their public exploit code",
	Long: `exploitscout looks a product up in the NVD, lists the CVEs affecting
it above a CVSS threshold, and ranks the GitHub repositories referenced
as exploit code by their stars and forks.

Typical flow:
- "exploitscout search <keyword>" finds the CPE name of a product
- "exploitscout cves <cpeName> --exploits" lists its CVEs with exploit repositories`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// SIGINT and SIGTERM cancel in-flight lookups.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.exploitscout.yaml)")
	rootCmd.PersistentFlags().String("nvd-url", nvd.DefaultBaseURL, "NVD REST API base URL")
	rootCmd.PersistentFlags().String("github-url", github.DefaultBaseURL, "GitHub REST API base URL")
	rootCmd.PersistentFlags().Duration("timeout", config.Default().Timeout, "timeout for each upstream request")
	rootCmd.PersistentFlags().Int("workers", enrich.DefaultWorkers, "concurrent repository lookups per CVE")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("metrics-file", "", "write prometheus metrics to this file after the run")

	// Bind flags to Viper
	viper.BindPFlag("nvd.base-url", rootCmd.PersistentFlags().Lookup("nvd-url"))
	viper.BindPFlag("github.base-url", rootCmd.PersistentFlags().Lookup("github-url"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("metrics-file", rootCmd.PersistentFlags().Lookup("metrics-file"))
}

func initConfig() {
	config.SetupViper()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// app wires the pipeline components for one command run
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func newApp() (*app, error) {
	cfg, err := config.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &app{cfg: cfg, logger: logger, metrics: metrics.New()}, nil
}

func (a *app) nvdClient() *nvd.Client {
	fetcher := transport.NewClient("nvd", a.cfg.NVD.BaseURL, a.cfg.Timeout)
	fetcher.Metrics = a.metrics
	return nvd.NewClient(fetcher, a.logger.Named("nvd"), a.metrics)
}

func (a *app) enricher() *enrich.Enricher {
	fetcher := transport.NewClient("github", a.cfg.GitHub.BaseURL, a.cfg.Timeout)
	fetcher.Accept = "application/vnd.github+json"
	fetcher.Metrics = a.metrics
	return enrich.New(github.NewResolver(fetcher), a.cfg.Workers, a.logger.Named("enrich"), a.metrics)
}

// close flushes the logger and writes the metrics file, if configured
func (a *app) close() {
	if err := a.metrics.WriteToFile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("failed to write metrics file", zap.String("path", a.cfg.MetricsFile), zap.Error(err))
	}
	_ = a.logger.Sync()
}
