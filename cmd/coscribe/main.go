package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/coscribe-labs/coscribe/internal/api"
	"github.com/coscribe-labs/coscribe/internal/client"
	"github.com/coscribe-labs/coscribe/internal/config"
	"github.com/coscribe-labs/coscribe/internal/cursor"
	"github.com/coscribe-labs/coscribe/internal/logging"
	"github.com/coscribe-labs/coscribe/internal/notes"
	"github.com/coscribe-labs/coscribe/internal/realtime"
)

var (
	cfgFile     string
	workspaceID string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coscribe",
		Short: "CoScribe collaborative workspace client",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&workspaceID, "workspace", "", "Workspace to open on startup")
	cmd.PersistentFlags().String("server-url", defaults.GetString("server.url"), "Backend base URL")
	cmd.PersistentFlags().String("socket-url", defaults.GetString("socket.url"), "Realtime endpoint (derived from server URL when empty)")
	cmd.PersistentFlags().String("token", "", "Bearer token (overrides env)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "server.url", "server-url")
	bindFlag(cmd, "socket.url", "socket-url")
	bindFlag(cmd, "auth.token", "token")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	godotenv.Load() //nolint:errcheck

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runClient(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	apiClient, err := api.NewClient(api.ClientConfig{
		BaseURL: appConfig.ServerURL,
		Token:   appConfig.Token,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	session, err := realtime.NewSession(realtime.SessionConfig{
		Dialer:           realtime.WebsocketDialer{},
		URL:              appConfig.SocketURL,
		HandshakeTimeout: appConfig.ConnectTimeout,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	board := notes.NewBoard(notes.BoardConfig{
		QuietWindow: appConfig.TypingQuiet,
		Logger:      logger,
	})

	app, err := client.NewApp(client.AppConfig{
		Session: session,
		API:     apiClient,
		Board:   board,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	// Terminal rendering assumes a monospaced grid.
	app.SetEditorView(cursor.GridMeasurer{}, cursor.TextStyle{
		CharAdvance: 8,
		LineHeight:  16,
		WrapWidth:   8 * 80,
	})

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(signalCtx, appConfig.ConnectTimeout)
	err = app.Connect(connectCtx, appConfig.Token)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("connected", zap.String("sid", session.SID()))

	if workspaceID != "" {
		workspace, err := app.OpenWorkspace(signalCtx, workspaceID)
		if err != nil {
			return err
		}
		logger.Info("workspace opened", zap.String("workspace", workspace.Name))
	}

	shell := newShell(app, logger)
	return shell.run(signalCtx, os.Stdin, os.Stdout)
}
