package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"bank-host-api/internal/client"
	"bank-host-api/internal/model"
)

var txOpt struct {
	card   string
	pin    string
	amount string
}

var inquiryCmd = &cobra.Command{
	Use:   "inquiry",
	Short: "check the balance of a card",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScenario(cmd, client.Scenario{
			Card: txOpt.card,
			PIN:  txOpt.pin,
			Type: model.TransactionTypeBalanceInquiry,
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "withdraw cash from a card",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(txOpt.amount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", txOpt.amount, err)
		}

		return runScenario(cmd, client.Scenario{
			Card:   txOpt.card,
			PIN:    txOpt.pin,
			Type:   model.TransactionTypeWithdrawal,
			Amount: &amount,
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{inquiryCmd, withdrawCmd} {
		rootCmd.AddCommand(c)

		c.Flags().StringVar(&txOpt.card, "card", "", "card number")
		c.Flags().StringVar(&txOpt.pin, "pin", "", "4 digit pin")
		_ = c.MarkFlagRequired("card")
		_ = c.MarkFlagRequired("pin")
	}

	withdrawCmd.Flags().StringVar(&txOpt.amount, "amount", "", "amount to withdraw")
	_ = withdrawCmd.MarkFlagRequired("amount")
}

func runScenario(cmd *cobra.Command, sc client.Scenario) error {
	_, err := newSession(cmd).Run(cmd.Context(), sc)
	return err
}
