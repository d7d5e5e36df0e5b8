package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsuyoshi-3110/concierge/internal/app"
	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/log"
	"github.com/tsuyoshi-3110/concierge/internal/pipeline"
)

var (
	askTenantID string
	askLocale   string
	askVerbose  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().StringVar(&askTenantID, "tenant", "", "tenant id (required)")
	askCmd.Flags().StringVar(&askLocale, "locale", "", "answer locale (ja, en)")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "print pipeline metadata")
	_ = askCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(askCmd)
}

func runAsk(parent context.Context, question string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{JSON: cfg.LogJSON})

	a, err := app.Setup(parent, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	res, err := a.Pipeline.Handle(parent, pipeline.Query{
		Text:     question,
		TenantID: askTenantID,
		Locale:   askLocale,
	})
	if err != nil {
		// The apology answer, if any, still gets printed below.
		if res.Answer == "" {
			return err
		}
	}

	fmt.Println(res.Answer)

	if res.Escalation.Escalate {
		fmt.Println()
		fmt.Println("(この質問はスタッフへの確認が必要です)")
	}

	if askVerbose {
		fmt.Println()
		fmt.Printf("query id:  %s\n", res.Metadata.QueryID)
		fmt.Printf("locale:    %s\n", res.Metadata.Locale)
		fmt.Printf("intents:   %s\n", strings.Join(res.Metadata.Intents, ", "))
		fmt.Printf("knowledge: %d lines\n", res.Metadata.KnowledgeLines)
		if len(res.Metadata.RetrievalScores) > 0 {
			fmt.Printf("retrieval: %v\n", res.Metadata.RetrievalScores)
		}
	}
	return err
}
