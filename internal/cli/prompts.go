package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/QuorumGo/internal/config"
	"github.com/dyike/QuorumGo/internal/models"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

func promptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Stock ticker symbol (e.g. AAPL, MSFT, NVDA):",
		Help:    "The symbol the analyst panel will deliberate over",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if str == "" {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker symbol too long (max 10 characters)")
		}
		if !tickerPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format (letters, numbers, dots and hyphens only)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToUpper(ticker)), nil
}

func promptForDate() (string, error) {
	var dateStr string
	prompt := &survey.Input{
		Message: "Trade date (YYYY-MM-DD):",
		Default: time.Now().Format("2006-01-02"),
	}

	err := survey.AskOne(prompt, &dateStr, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return nil
		}
		parsed, err := time.Parse("2006-01-02", str)
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		if parsed.After(time.Now().AddDate(0, 0, 1)) {
			return fmt.Errorf("trade date cannot be in the future")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dateStr) == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	return strings.TrimSpace(dateStr), nil
}

func promptForMethod(current string) (string, error) {
	options := []string{
		string(models.MethodWeighted) + " - expertise-weighted vote",
		string(models.MethodMajority) + " - one analyst, one vote",
		string(models.MethodConfidence) + " - confidence-weighted vote",
	}
	defaultOption := options[0]
	for _, opt := range options {
		if strings.HasPrefix(opt, current) {
			defaultOption = opt
		}
	}

	var selected string
	prompt := &survey.Select{
		Message: "Consensus method:",
		Options: options,
		Default: defaultOption,
		Help:    "How the final round's positions collapse into one decision",
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return strings.SplitN(selected, " ", 2)[0], nil
}

func promptForConfirmation(symbol, date, method string, rounds int) (bool, error) {
	fmt.Printf(`
Deliberation setup
------------------
Symbol:            %s
Trade date:        %s
Consensus method:  %s
Max rounds:        %d

`, symbol, date, method, rounds)

	var confirmed bool
	prompt := &survey.Confirm{
		Message: "Proceed with this deliberation?",
		Default: true,
	}
	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}

func promptForAnotherRun() (bool, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What next?",
		Options: []string{
			"Deliberate another symbol",
			"Exit",
		},
		Default: "Exit",
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return false, err
	}
	return choice == "Deliberate another symbol", nil
}

// runInteractive drives the survey-based flow the root command defaults to.
func runInteractive(cfg *config.Config) error {
	fmt.Println("QuorumGo - multi-agent deliberation for trading signals")
	fmt.Println(strings.Repeat("=", 55))

	for {
		symbol, err := promptForTicker()
		if err != nil {
			return err
		}
		date, err := promptForDate()
		if err != nil {
			return err
		}
		method, err := promptForMethod(cfg.ConsensusMethod)
		if err != nil {
			return err
		}

		confirmed, err := promptForConfirmation(symbol, date, method, cfg.MaxDebateRounds)
		if err != nil {
			return err
		}
		if confirmed {
			cfg.ConsensusMethod = method
			if err := runAnalyze(cfg, symbol, date, true); err != nil {
				fmt.Printf("Deliberation failed: %v\n", err)
			}
		}

		again, err := promptForAnotherRun()
		if err != nil || !again {
			return err
		}
	}
}
