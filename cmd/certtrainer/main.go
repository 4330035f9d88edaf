package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgfreitas/certtrainer/internal/bank"
	"github.com/rgfreitas/certtrainer/internal/exam"
	"github.com/rgfreitas/certtrainer/internal/feedback"
	"github.com/rgfreitas/certtrainer/internal/handler"
	appI18n "github.com/rgfreitas/certtrainer/internal/i18n"
	"github.com/rgfreitas/certtrainer/internal/llm"
	"github.com/rgfreitas/certtrainer/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "certtrainer",
		Short: "Certification exam trainer API powered by LLMs",
	}

	serve := serveCmd()
	root.AddCommand(serve, seedCheckCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `certtrainer --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP trainer server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "certtrainer.db", "SQLite database path")
	f.String("seed-dir", "seed", "Directory with per-track seed question files")
	f.StringSliceP("tracks", "t", []string{"AZ-900", "AI-900", "DP-900"}, "Certification tracks to seed")
	f.StringP("lang", "l", "pt-BR", "Default language for seeds and analyses")
	f.String("llm-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for LLM (or set OPENAI_API_KEY)")
	f.String("llm-model", "gpt-5", "LLM model name")
	f.Int("llm-max-tokens", 1500, "Completion token limit per LLM call")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func seedCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seedcheck",
		Short: "Validate seed files and print per-track bank totals as JSON",
		RunE:  runSeedCheck,
	}
	f := cmd.Flags()
	f.String("seed-dir", "seed", "Directory with per-track seed question files")
	f.StringSliceP("tracks", "t", []string{"AZ-900", "AI-900", "DP-900"}, "Certification tracks to check")
	f.StringP("lang", "l", "pt-BR", "Bank language key")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("CERTTRAINER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("certtrainer")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/certtrainer")
	v.AddConfigPath("/etc/certtrainer")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	banks := bank.NewStore()
	bank.LoadSeeds(v.GetString("seed-dir"), v.GetStringSlice("tracks"), lang, banks)

	apiKey := v.GetString("llm-key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	llmClient := llm.New(
		v.GetString("llm-url"),
		apiKey,
		v.GetString("llm-model"),
		v.GetInt("llm-max-tokens"),
	)

	// Exam creation degrades to bank fallback when the model is down, so a
	// failed health check only warns.
	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := llmClient.Ping(pingCtx); err != nil {
		slog.Warn("LLM endpoint unreachable, exams will fall back to the seed bank", "error", err)
	} else {
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	}
	cancel()

	exams := exam.New(banks, db, llmClient)
	fb := feedback.New(llmClient)
	h := handler.New(exams, fb, db, banks, llmClient)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(handler.Telemetry)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"tracks", v.GetStringSlice("tracks"),
	)
	return http.ListenAndServe(addr, r)
}

func runSeedCheck(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	banks := bank.NewStore()
	bank.LoadSeeds(v.GetString("seed-dir"), v.GetStringSlice("tracks"), lang, banks)

	type trackStatus struct {
		Track        string         `json:"track"`
		Language     string         `json:"language"`
		Total        int            `json:"total"`
		ByDifficulty map[string]int `json:"byDifficulty"`
	}
	var status []trackStatus
	for _, k := range banks.Keys() {
		questions := banks.Get(k.Track, k.Language)
		counts := make(map[string]int)
		for _, q := range questions {
			counts[string(q.Difficulty)]++
		}
		status = append(status, trackStatus{
			Track:        k.Track,
			Language:     k.Language,
			Total:        len(questions),
			ByDifficulty: counts,
		})
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}
