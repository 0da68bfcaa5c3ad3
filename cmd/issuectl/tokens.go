package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chainsafe/crosschain-issuer/pkg/balance"
	tokenservice "github.com/chainsafe/crosschain-issuer/pkg/token/service"
)

var balancesCmd = &cobra.Command{
	Use:   "balances OWNER SYMBOL [SYMBOL...]",
	Short: "Read side chain balances of several symbols",
	Long: `Reads every balance concurrently. Symbols whose read failed are listed as
unavailable rather than zero and the command exits non-zero.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, cleanup, err := connect(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := comps.Tokens.Balances(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		printBalances(cmd.OutOrStdout(), res)
		return res.Err()
	},
}

var holdingsCmd = &cobra.Command{
	Use:   "holdings OWNER",
	Short: "List the NFTs an owner holds on the side chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, cleanup, err := connect(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := comps.Tokens.Holdings(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printHoldings(cmd.OutOrStdout(), res)
		return nil
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Send tokens from the signer's wallet on the side chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := &tokenservice.TransferRequest{}
		req.To, _ = cmd.Flags().GetString("to")
		req.Symbol, _ = cmd.Flags().GetString("symbol")
		req.Amount, _ = cmd.Flags().GetString("amount")
		req.Decimals, _ = cmd.Flags().GetInt32("decimals")
		req.Memo, _ = cmd.Flags().GetString("memo")

		comps, cleanup, err := connect(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := comps.Tokens.Transfer(cmd.Context(), req)
		if err != nil {
			if errors.Is(err, tokenservice.ErrInsufficientFunds) {
				return fmt.Errorf("%s holds less than %s %s", comps.Side.Signer.Address(), req.Amount, req.Symbol)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "transferred %d %s to %s\ntx: %s\n", res.Amount, res.Symbol, res.To, res.TransactionID)
		return nil
	},
}

func init() {
	transferCmd.Flags().String("to", "", "Recipient address")
	transferCmd.Flags().String("symbol", "", "Token symbol")
	transferCmd.Flags().String("amount", "", "Amount in whole units")
	transferCmd.Flags().Int32("decimals", 0, "Token decimals")
	transferCmd.Flags().String("memo", "", "Transfer memo")
	for _, f := range []string{"to", "symbol", "amount"} {
		_ = transferCmd.MarkFlagRequired(f)
	}

	rootCmd.AddCommand(balancesCmd, holdingsCmd, transferCmd)
}

func printBalances(w io.Writer, res *balance.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tBALANCE")
	for _, h := range res.Successes {
		fmt.Fprintf(tw, "%s\t%d\n", h.Symbol, h.Balance)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(tw, "%s\tunavailable (%v)\n", f.Symbol, f.Err)
	}
	_ = tw.Flush()
}

func printHoldings(w io.Writer, res *tokenservice.HoldingsResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tBALANCE")
	for _, it := range res.Items {
		bal := "unavailable"
		if it.Balance != nil {
			bal = strconv.FormatInt(*it.Balance, 10)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Symbol, strings.TrimSpace(it.TokenName), bal)
	}
	_ = tw.Flush()
}
