package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alvmarrod/redfish-verify/internal/config"
	"github.com/alvmarrod/redfish-verify/internal/crawler"
	"github.com/alvmarrod/redfish-verify/internal/metrics"
	"github.com/alvmarrod/redfish-verify/internal/redfish"
	"github.com/alvmarrod/redfish-verify/internal/report"
	"github.com/alvmarrod/redfish-verify/internal/spec"
	"github.com/alvmarrod/redfish-verify/internal/storage"
	"github.com/alvmarrod/redfish-verify/internal/validate"
	"github.com/alvmarrod/redfish-verify/internal/version"
)

const envPrefix = "REDFISH_VERIFY"

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "redfish-verify",
	Short: "Walks a Redfish service and verifies resource URIs against an OpenAPI specification",
	Long: `redfish-verify logs into a Redfish service, crawls its resource graph by
following @odata.id references, and checks every resource's @odata.id
against the URI patterns its @odata.type declares in the supplied OpenAPI
specification. A per-resource Pass/Warning/Fail classification is written
to an HTML report.`,
	SilenceUsage: true,
	RunE:         runVerify,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("redfish-verify version: %s\n", version.Version)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cfg.User, "user", "u", "", "The user name for authentication (required)")
	rootCmd.Flags().StringVarP(&cfg.Password, "password", "p", "", "The password for authentication (or "+envPrefix+"_PASSWORD)")
	rootCmd.Flags().StringVarP(&cfg.Host, "rhost", "r", "", "The address of the Redfish service (required)")
	rootCmd.Flags().StringVarP(&cfg.OpenAPIPath, "openapi", "o", "", "The OpenAPI specification to validate against (required)")
	rootCmd.Flags().StringVarP(&cfg.LogDir, "logdir", "d", "", "Output directory for the report and metrics")
	rootCmd.Flags().StringVar(&cfg.DBPath, "db", "", "Optional sqlite database to archive run results into")
	rootCmd.Flags().IntVar(&cfg.RequestTimeoutMs, "timeout", 0, "Per-request timeout in milliseconds")
	rootCmd.Flags().IntVar(&cfg.RetryAttempts, "retries", 0, "Retry attempts for transient fetch failures")
	rootCmd.Flags().BoolVar(&cfg.InsecureTLS, "insecure", true, "Skip TLS certificate verification (BMCs use self-signed certs)")

	rootCmd.MarkFlagRequired("user")
	rootCmd.MarkFlagRequired("rhost")
	rootCmd.MarkFlagRequired("openapi")

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.BindPFlag("password", rootCmd.Flags().Lookup("password"))

	rootCmd.AddCommand(versionCmd)
}

func main() {
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	logrus.Infof("Redfish URI verifier v%s starting...", version.Version)

	// The password flag may be satisfied from the environment
	cfg.Password = viper.GetString("password")

	conf, err := config.Load(&cfg)
	if err != nil {
		return err
	}

	logrus.Infof("Opening %s...", conf.OpenAPIPath)
	doc, err := spec.LoadDocument(conf.OpenAPIPath)
	if err != nil {
		return err
	}

	index := spec.BuildIndex(doc)
	logrus.Infof("Pattern index built: %d type keys from '%s'", index.Len(), doc.Info.Title)

	client := redfish.NewClient(conf)
	ctx := context.Background()

	logrus.Infof("Service URI: %s", client.BaseURL())
	logrus.Info("Logging in and crawling resources; this may take a while...")

	startedAt := time.Now()
	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("could not log into %s as '%s': %w", client.BaseURL(), conf.User, err)
	}
	defer func() {
		if err := client.Logout(ctx); err != nil {
			logrus.Warnf("Logout failed: %v", err)
		}
	}()

	tracker := metrics.NewTracker()

	// Periodic progress while the crawl runs
	stopProgress := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logrus.Info(tracker.LogProgress())
			case <-stopProgress:
				return
			}
		}
	}()

	c := crawler.New(client, validate.New(index), tracker)
	records := c.Run(ctx, "/redfish/v1/")
	close(stopProgress)

	snapshot := tracker.GetSnapshot()
	logrus.Info("Final stats: " + tracker.LogProgress())
	printSummary(snapshot)

	summary := report.Summary{
		Host:        client.BaseURL(),
		User:        conf.User,
		OpenAPIPath: conf.OpenAPIPath,
		ToolVersion: version.Version,
		GeneratedAt: time.Now(),
		Passed:      snapshot.Passed,
		Failed:      snapshot.Failed,
		Warned:      snapshot.Warned,
	}

	reportPath, err := report.Write(conf.LogDir, summary, records)
	if err != nil {
		return err
	}
	logrus.Infof("Report written to %s", reportPath)

	metricsPath := strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + "_metrics.json"
	if err := tracker.WriteToFile(metricsPath, "completed"); err != nil {
		logrus.Warnf("Failed to write metrics: %v", err)
	}

	if conf.DBPath != "" {
		if err := archiveRun(conf.DBPath, client.BaseURL(), startedAt, snapshot, records); err != nil {
			logrus.Warnf("Failed to archive run: %v", err)
		}
	}

	return nil
}

func archiveRun(dbPath, host string, startedAt time.Time, snapshot metrics.Snapshot, records []validate.Record) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run := storage.Run{
		RunID:      uuid.NewString(),
		Host:       host,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Passed:     snapshot.Passed,
		Failed:     snapshot.Failed,
		Warned:     snapshot.Warned,
	}

	if err := store.SaveRun(run, records); err != nil {
		return err
	}

	logrus.Infof("Run %s archived to %s", run.RunID, dbPath)
	return nil
}

func printSummary(snapshot metrics.Snapshot) {
	fmt.Printf("Results: %s, %s, %s\n",
		color.GreenString("Pass: %d", snapshot.Passed),
		color.RedString("Fail: %d", snapshot.Failed),
		color.YellowString("Warning: %d", snapshot.Warned),
	)
}
