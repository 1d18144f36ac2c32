package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/config"
	"quiz-admin-service/internal/domain"
)

// NewAnalyticsCmd prints a quiz's analytics report as JSON, for operators
// working directly against the configured store.
func NewAnalyticsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics <quiz-id>",
		Short: "Print the analytics report for a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver == config.DriverMemory {
				return errors.New("analytics needs a persistent storage driver")
			}
			d, err := buildDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			quiz, err := d.stores.loader.LoadQuiz(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrQuizNotFound) {
				return fmt.Errorf("quiz %s not found", args[0])
			}
			if err != nil {
				return err
			}
			// Operators act on behalf of the quiz owner.
			owner := auth.Session{AdminID: quiz.OwnerID}
			report, err := d.quizService().Analytics(cmd.Context(), owner, quiz.ID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
