package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/learnhub-api/internal/config"
	"github.com/redmonkez12/learnhub-api/internal/database"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "lmsctl",
		Short:        "Operator tasks for the LearnHub API",
		Long:         "Apply schema migrations, seed the course catalog and check configuration before deploying the API.",
		SilenceUsage: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}

	seedCmd := &cobra.Command{
		Use:   "seed-courses",
		Short: "Insert catalog courses from a JSON file",
		RunE:  runSeedCourses,
	}
	seedCmd.Flags().StringP("file", "f", "", "JSON file holding an array of courses")
	_ = seedCmd.MarkFlagRequired("file")

	checkCmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate the environment configuration and print a summary",
		RunE:  runCheckConfig,
	}

	rootCmd.AddCommand(migrateCmd, seedCmd, checkCmd)
	return rootCmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
	return nil
}

func runSeedCourses(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	courses, err := database.ReadSeedCourses(f)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	ids, err := database.SeedCourses(cmd.Context(), db, courses)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d courses: %v\n", len(ids), ids)
	return nil
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), cfg)
	return nil
}

// printSummary writes the effective settings without secrets.
func printSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration OK")
	fmt.Fprintf(w, "  env:             %s\n", cfg.Server.Env)
	fmt.Fprintf(w, "  port:            %s\n", cfg.Server.Port)
	fmt.Fprintf(w, "  database:        %s@%s:%s/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Fprintf(w, "  redis:           %s\n", cfg.Redis.Address())
	fmt.Fprintf(w, "  token strategy:  %s (%s)\n", cfg.Auth.TokenStrategy, cfg.Auth.TokenDuration)
	fmt.Fprintf(w, "  require token:   %t\n", cfg.Auth.RequireToken)
	fmt.Fprintf(w, "  smtp:            %s\n", enabled(cfg.Email.SMTPHost != ""))
	fmt.Fprintf(w, "  image host:      %s\n", enabled(cfg.ImageHost.Enabled()))
	fmt.Fprintf(w, "  upload dir:      %s\n", cfg.Upload.Dir)
}

func enabled(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}
