package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"microstore/internal/config"
	"microstore/internal/logging"
	"microstore/internal/services"
	"microstore/internal/slug"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "microstore",
	Short: "MicroStore - instant store pages",
	Long: `MicroStore serves a form that turns a shop name, a few products, a phone
number and a UPI id into a shareable store page at /store/{slug}.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var slugCmd = &cobra.Command{
	Use:   "slug <shop name>",
	Short: "Print the slug a shop name would get",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSlug,
}

var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Print a stored store as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var slugSuffix string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before reading the environment")
	slugCmd.Flags().StringVar(&slugSuffix, "suffix", "", "Use this suffix instead of a random one (empty string allowed with --suffix=)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(slugCmd)
	rootCmd.AddCommand(showCmd)
}

// loadConfig reads the .env file, the environment and builds the logger.
func loadConfig() (config.Config, *logrus.Logger, error) {
	config.LoadDotEnv(envFile)
	cfg, err := config.Load(config.New())
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Error("failed to release resources")
		}
	}()

	startEventConsumer(app, cfg, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.AppPort).Info("starting server")
		serveErr <- app.Fiber.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	if err := app.Fiber.Shutdown(); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	log.Info("server gracefully stopped")
	return nil
}

// startEventConsumer logs store events from the queue when
// CONSUME_STORE_EVENTS is set. It reports whether a consumer was started.
// Left off by default so the server does not ack messages meant for other
// consumers of the same queue.
func startEventConsumer(app *App, cfg config.Config, log logrus.FieldLogger) bool {
	if app.MQ == nil || !cfg.ConsumeStoreEvents {
		return false
	}
	eventLog := log.WithField("component", "store_events")
	if err := app.MQ.ConsumeStoreEvents(func(event map[string]interface{}) error {
		eventLog.WithFields(logrus.Fields(event)).Info("store created event received")
		return nil
	}); err != nil {
		log.WithError(err).Warn("failed to start store event consumer")
		return false
	}
	return true
}

func runSlug(cmd *cobra.Command, args []string) error {
	suffix := slugSuffix
	if !cmd.Flags().Changed("suffix") {
		suffix = slug.NewSource().Suffix()
	}
	name := args[0]
	for _, a := range args[1:] {
		name += " " + a
	}
	fmt.Fprintln(cmd.OutOrStdout(), slug.Generate(name, suffix))
	return nil
}

type shownStore struct {
	Slug    string      `json:"slug"`
	Outcome string      `json:"outcome"`
	Store   interface{} `json:"store,omitempty"`
	Links   interface{} `json:"links,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	log.SetOutput(cmd.ErrOrStderr())

	repo, closeRepo, err := openStoreRepository(cfg, log, false)
	if err != nil {
		return err
	}
	defer closeRepo()

	view := newStoreService(cfg, log, repo, nil).Display(context.Background(), args[0])
	return writeView(cmd, view)
}

func writeView(cmd *cobra.Command, view services.StoreView) error {
	out := shownStore{Slug: view.Slug, Outcome: view.Outcome.String()}
	if view.Found() {
		out.Store = view.Store
		out.Links = map[string]string{
			"call":     view.Links.Call,
			"whatsapp": view.Links.WhatsApp,
			"upi":      view.Links.UPI,
		}
	}
	if view.Err != nil {
		out.Error = view.Err.Error()
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return err
	}
	if !view.Found() {
		return fmt.Errorf("store %q not found", view.Slug)
	}
	return nil
}
