package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/domain"
	"docqa/internal/usecase"
)

var (
	askExpertise string
	askBackend   string
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot question from the terminal",
	Long: `Ask a question against the knowledge base and print the answer with its
references.

Examples:
  docqa ask "What is the refund policy?"
  docqa ask -e expert -b anthropic "Summarize the pricing terms" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askExpertise, "expertise", "e", "beginner", "expertise level (beginner|intermediate|expert)")
	askCmd.Flags().StringVarP(&askBackend, "backend", "b", "", "LLM backend (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	expertise := domain.ExpertiseLevel(askExpertise)
	if !expertise.Valid() {
		return fmt.Errorf("invalid expertise level: %q", askExpertise)
	}

	backendName := askBackend
	if backendName == "" {
		backendName = cfg.Synthesis.Backend
	}
	backend, ok := backendsFromConfig(cfg)[backendName]
	if !ok {
		return fmt.Errorf("unknown backend: %q", backendName)
	}

	comps, err := openComponents(true)
	if err != nil {
		return err
	}
	defer comps.Close()

	answerUC := usecase.NewAnswerUseCase(comps.retriever, backend, cfg.Retrieve.TopK)
	result, err := answerUC.Answer(cmd.Context(), question, expertise, "")
	if err != nil {
		return err
	}

	if askJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(result.Text)
	if len(result.References) > 0 {
		fmt.Println("\nReferences:")
		for _, ref := range result.References {
			fmt.Printf("  - %s (%s)\n", ref.DisplayName, ref.Source)
		}
	}
	if result.Usage != nil {
		fmt.Printf("\ntokens: %d in / %d out\n", result.Usage.InputTokens, result.Usage.OutputTokens)
	}
	return nil
}
