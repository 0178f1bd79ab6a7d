// Package cmd implements the controller's command line surface.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/controller"
)

//nolint:gochecknoglobals // set by SetVersion from main
var (
	version = "development"
	gitsha  = "development"
)

// SetVersion records build metadata for the startup log line.
func SetVersion(ver, sha string) {
	version = ver
	gitsha = sha
}

//nolint:gochecknoglobals // cobra command pattern
var rootCmd = &cobra.Command{
	Use:   "eks-alb-cloudfront-controller",
	Short: "Kubernetes controller that fronts ALB Ingresses with CloudFront",
	Long: `A Kubernetes controller that provisions AWS CloudFront distributions in
front of ALB-backed Ingresses via ACK custom resources. It periodically
re-evaluates each Ingress's cloudfront.aws.k8s.io/enabled annotation and
converges the dependent CloudFront resources to match.`,
	RunE:          runController,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json, text)")

	rootCmd.Flags().String("template-path", "/etc/cloudfront/template.yaml",
		"Path to the multi-document CloudFront template")
	rootCmd.Flags().Duration("resync-interval", controller.DefaultResyncInterval,
		"Periodic re-evaluation interval per Ingress")
	rootCmd.Flags().Bool("set-dns-target", true,
		"Patch the external-dns target annotation with the distribution domain")
	rootCmd.Flags().String("metrics-addr", ":8080", "Address for metrics endpoint")
	rootCmd.Flags().String("health-addr", ":8081", "Address for health probe endpoint")

	_ = viper.BindPFlags(rootCmd.Flags())
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	viper.SetEnvPrefix("CFRONT")
	viper.AutomaticEnv()

	viper.SetDefault("template-path", "/etc/cloudfront/template.yaml")
	viper.SetDefault("resync-interval", controller.DefaultResyncInterval)
	viper.SetDefault("set-dns-target", true)
	viper.SetDefault("metrics-addr", ":8080")
	viper.SetDefault("health-addr", ":8081")
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "json")
}

// Execute runs the root command.
func Execute() error {
	return errors.Wrap(rootCmd.Execute(), "command execution failed")
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo

	switch viper.GetString("log-level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if viper.GetString("log-format") == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

//nolint:noinlineerr // inline error handling is fine here
func runController(_ *cobra.Command, _ []string) error {
	logger := setupLogger()
	slog.SetDefault(logger)

	ctrl.SetLogger(logr.FromSlogHandler(logger.Handler()))

	logger.Info("starting eks-alb-cloudfront-controller",
		"version", version,
		"gitsha", gitsha,
	)

	templatePath := viper.GetString("template-path")
	if templatePath == "" {
		return errors.New("template-path is required")
	}

	cfg := controller.Config{
		TemplatePath:   templatePath,
		ResyncInterval: viper.GetDuration("resync-interval"),
		SetDNSTarget:   viper.GetBool("set-dns-target"),
		MetricsAddr:    viper.GetString("metrics-addr"),
		HealthAddr:     viper.GetString("health-addr"),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := controller.Run(ctx, &cfg); err != nil {
		return errors.Wrap(err, "failed to run controller")
	}

	return nil
}
