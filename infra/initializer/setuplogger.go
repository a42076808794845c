package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type levelStyle struct {
	level log.Level
	key   string
	icon  string
	color lipgloss.AdaptiveColor
}

var levelStyles = []levelStyle{
	{log.ErrorLevel, "error", "❌", lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}},
	{log.WarnLevel, "warn", "⚠️", lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}},
	{log.InfoLevel, "info", "ℹ️", lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}},
	{log.DebugLevel, "debug", "🐛", lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}},
}

// ledgerStyles highlights the keys the services log on every mutation.
func ledgerStyles() *log.Styles {
	styles := log.DefaultStyles()
	for _, ls := range levelStyles {
		styles.Levels[ls.level] = lipgloss.NewStyle().
			SetString(ls.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(ls.color)
		styles.Keys[ls.key] = lipgloss.NewStyle().Foreground(ls.color)
		styles.Values[ls.key] = lipgloss.NewStyle().Bold(true)
	}

	accent := lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
	for _, key := range []string{"op", "accountID", "transactionID", "balance", "amount"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(accent)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return styles
}

func setupLogger(cfg *config.Log) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Level: "info", Format: "text"}
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	formatter := log.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           level,
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(ledgerStyles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
