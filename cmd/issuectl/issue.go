package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chainsafe/crosschain-issuer/pkg/issuance"
	"github.com/chainsafe/crosschain-issuer/pkg/token"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Run an issuance workflow in the foreground",
	Long: `Creates the token on the main chain, validates it for the side chain, waits for
the side chain to index the main chain, submits the cross-chain create and, in
token mode, issues the supply. Ctrl-C cancels the run after the current step.

The definition file is JSON:

  {"symbol": "ART-1", "tokenName": "Art", "totalSupply": 1, "decimals": 0,
   "issuer": "...", "owner": "...", "isBurnable": true, "issueChainId": 1931928}`,
	Args: cobra.NoArgs,
	RunE: runIssue,
}

func init() {
	issueCmd.Flags().StringP("file", "f", "", "Token definition JSON file, - for stdin")
	issueCmd.Flags().String("mode", string(token.ModeCreateToken), "Workflow: token or collection")
	issueCmd.Flags().String("memo", "", "Memo attached to the issue transaction")
	issueCmd.Flags().Bool("resume", false, "Treat already created symbols as done and continue")
	_ = issueCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(issueCmd)
}

func runIssue(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	mode, _ := cmd.Flags().GetString("mode")
	memo, _ := cmd.Flags().GetString("memo")
	resume, _ := cmd.Flags().GetBool("resume")

	def, err := readDefinition(file)
	if err != nil {
		return err
	}
	if err := def.Validate(token.Mode(mode)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, cleanup, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	orch, err := comps.Orchestrator(newConsoleObserver(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	outcome, runErr := orch.Run(ctx, issuance.Request{
		Definition: def,
		Mode:       token.Mode(mode),
		Memo:       memo,
		Resume:     resume,
	})
	if outcome != nil {
		printOutcome(cmd.OutOrStdout(), outcome)
	}
	if runErr != nil {
		return fmt.Errorf("issuance failed at %s (%s): %w", issuance.StageOf(runErr), issuance.KindOf(runErr), runErr)
	}
	return nil
}

func printOutcome(out io.Writer, o *issuance.Outcome) {
	fmt.Fprintf(out, "\nrun:           %s\n", o.RunID)
	fmt.Fprintf(out, "stage reached: %s\n", o.StageReached)
	for _, s := range issuance.Stages(issuance.ModeCreateToken) {
		if tx, ok := o.Transactions[s]; ok {
			fmt.Fprintf(out, "  %-16s %s\n", s, tx)
		}
	}
	if o.FinalTransactionID != "" {
		fmt.Fprintf(out, "final tx:      %s\n", o.FinalTransactionID)
	}
}
