package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyike/QuorumGo/internal/config"
	"github.com/dyike/QuorumGo/internal/display"
	"github.com/dyike/QuorumGo/internal/trading"
)

const version = "1.0.0"

// NewRootCmd builds the quorumgo command tree.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "quorumgo",
		Short: "QuorumGo - multi-agent deliberation for trading signals",
		Long: `QuorumGo runs a panel of specialized LLM analysts through structured
debate rounds until they converge (or the round budget runs out), then
aggregates their positions into a single actionable trading signal.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			return cfg.EnsureDirectories()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cfg)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newSessionCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cfg))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [SYMBOL]",
		Short: "Deliberate over one symbol and print the resulting signal",
		Long: `Run the full analyst panel against a stock ticker symbol.
Example: quorumgo analyze AAPL --date=2026-03-15 --method=weighted`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			method, _ := cmd.Flags().GetString("method")
			rounds, _ := cmd.Flags().GetInt("rounds")
			showDebate, _ := cmd.Flags().GetBool("show-debate")

			if method != "" {
				cfg.ConsensusMethod = method
			}
			if rounds > 0 {
				cfg.MaxDebateRounds = rounds
			}
			return runAnalyze(cfg, args[0], date, showDebate)
		},
	}

	cmd.Flags().String("date", "", "Trade date in YYYY-MM-DD format (today if omitted)")
	cmd.Flags().String("method", "", "Consensus method: weighted, majority or confidence")
	cmd.Flags().Int("rounds", 0, "Maximum debate rounds")
	cmd.Flags().Bool("show-debate", false, "Print the round-by-round debate transcript")

	return cmd
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [SYMBOL]",
		Short: "List recently generated signals",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := ""
			if len(args) == 1 {
				symbol = args[0]
			}
			limit, _ := cmd.Flags().GetInt("limit")
			return runHistory(cfg, symbol, limit)
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of signals to list")
	return cmd
}

func newSessionCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "session [SESSION_ID]",
		Short: "Show the debate transcript of a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cfg, args[0])
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("QuorumGo v%s\n", version)
			fmt.Println("Multi-agent deliberation and consensus engine for trading signals")
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	return configCmd
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runAnalyze(cfg *config.Config, symbol, date string, showDebate bool) error {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	engine, err := trading.NewEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Printf("Deliberating %s as of %s (%s method, up to %d rounds)...\n",
		symbol, date, cfg.ConsensusMethod, cfg.MaxDebateRounds)

	sig, err := engine.Run(ctx, symbol, date)
	if err != nil {
		return fmt.Errorf("deliberation failed: %w", err)
	}

	fmt.Print(display.RenderSignal(sig))
	if showDebate && sig.Session != nil {
		fmt.Print(display.RenderSession(sig.Session))
	}
	return nil
}

func runHistory(cfg *config.Config, symbol string, limit int) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	engine, err := trading.NewEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	records, err := engine.History(ctx, symbol, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No stored signals found.")
		return nil
	}

	fmt.Printf("%-6s %-8s %-13s %-6s %-6s %-11s %s\n",
		"ID", "SYMBOL", "SIGNAL", "CONF", "CONS", "METHOD", "GENERATED")
	for _, r := range records {
		fmt.Printf("%-6d %-8s %-13s %-6.0f %-6.0f %-11s %s\n",
			r.ID, r.Symbol, r.Signal, r.Confidence*100, r.ConsensusLevel*100,
			r.Method, r.GeneratedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runSession(cfg *config.Config, sessionID string) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	engine, err := trading.NewEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	session, err := engine.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	fmt.Print(display.RenderSession(session))
	return nil
}

func showConfig(cfg *config.Config) {
	fmt.Println("QuorumGo configuration")
	fmt.Println("----------------------")
	fmt.Printf("Results Directory:   %s\n", cfg.ResultsDir)
	fmt.Printf("Data Directory:      %s\n", cfg.DataDir)
	fmt.Printf("Cache Directory:     %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("LLM Provider:        %s\n", cfg.LLMProvider)
	fmt.Printf("Model:               %s\n", cfg.Model)
	if cfg.BackendURL != "" {
		fmt.Printf("Backend URL:         %s\n", cfg.BackendURL)
	}
	fmt.Println()
	fmt.Printf("Consensus Method:    %s\n", cfg.ConsensusMethod)
	fmt.Printf("Max Debate Rounds:   %d\n", cfg.MaxDebateRounds)
	fmt.Printf("Analyst Timeout:     %s\n", cfg.AnalystTimeout)
	fmt.Printf("Session Timeout:     %s\n", cfg.SessionTimeout)
	fmt.Printf("Confidence Spread:   %.2f\n", cfg.ConfidenceSpread)
	fmt.Println()
	fmt.Printf("Online Tools:        %t\n", cfg.OnlineTools)
	fmt.Printf("Cache Enabled:       %t\n", cfg.CacheEnabled)
	fmt.Printf("Debug Mode:          %t\n", cfg.Debug)
	fmt.Println()
	if cfg.FinnhubAPIKey != "" {
		fmt.Println("Finnhub API:         configured")
	} else {
		fmt.Println("Finnhub API:         not configured (Google News fallback)")
	}
	if cfg.LongportAppKey != "" {
		fmt.Println("Longport API:        configured")
	} else {
		fmt.Println("Longport API:        not configured")
	}
}
