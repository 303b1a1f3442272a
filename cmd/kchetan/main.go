// Command kchetan is the Krishi-Chetan console client: it logs in against
// the backend, then serves the dashboards in the terminal or as a local
// JSON view server.
package main

import (
	"cmp"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/krishichetan/kchetan/internal/config"
	"github.com/krishichetan/kchetan/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// cli carries what PersistentPreRunE resolved for the subcommands.
type cli struct {
	flags config.Options
	opts  *config.Options
	log   *logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{log: logger.New()}

	root := &cobra.Command{
		Use:   "kchetan",
		Short: "Krishi-Chetan agricultural advisory client",
		Long: `kchetan talks to a Krishi-Chetan backend on behalf of a farmer or an
extension officer.

Log in once with "kchetan login", then open the dashboards in the terminal
with "kchetan tui" or serve them to a local browser with "kchetan serve".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			c.opts = opts

			logFile := opts.LogFile
			if logFile == "" && cmd.Name() == "tui" {
				// The terminal UI owns the screen.
				logFile = "kchetan.log"
			}
			if logFile != "" {
				err = c.log.InitFile(opts.LogLevel, logFile)
			} else {
				err = c.log.Init(opts.LogLevel)
			}
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.log.Log.Debug("configuration loaded",
				zap.String("backend", opts.BackendURL),
				zap.String("session_store", opts.SessionStore),
				zap.String("config", opts.Config))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.log.Log.Sync()
		},
	}
	config.RegisterFlags(root.PersistentFlags(), &c.flags)

	root.AddCommand(
		newLoginCmd(c),
		newRegisterCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newTUICmd(c),
		newServeCmd(c),
		newCertgenCmd(c),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version and date",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Krishi-Chetan client\nVersion: %s\nBuild Date: %s\n",
				cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
