// Package cli implements the authapi command line: the HTTP server and the
// administrative bootstrap commands. Entry point is NewRootCmd.
package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/easygenerator/auth-api/internal/pkg/config"
	"github.com/easygenerator/auth-api/pkg/logger"
)

// App holds the state shared by all subcommands, filled in PersistentPreRunE.
type App struct {
	EnvFile string
	Config  *config.Config
	Log     zerolog.Logger
}

// NewRootCmd builds the root command. Running it without a subcommand
// starts the server.
func NewRootCmd(version string) *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:     "authapi",
		Short:   "User registration, login and management API",
		Version: version,
		Long: `authapi serves the user auth REST API.

Examples:
  authapi serve
  authapi create-admin --name "Root" --email root@example.com --password 'S3cure!pass'
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.AddCommand(
		NewServeCmd(app),
		NewCreateAdminCmd(app),
	)
	return cmd
}

func (a *App) init(cmd *cobra.Command) error {
	if a.EnvFile != "" {
		// Existing environment variables take precedence over the file.
		if err := godotenv.Load(a.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	a.Config = cfg

	a.Log = logger.Init(logger.Options{
		Level:     cfg.LogLevel,
		Pretty:    !cfg.IsProduction(),
		Output:    cmd.ErrOrStderr(),
		File:      cfg.LogFile,
		ErrorFile: cfg.LogErrFile,
	})
	return nil
}
