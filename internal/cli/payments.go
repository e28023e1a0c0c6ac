package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nyumba-app/nyumba/internal/payment"
)

func newPaymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "List rent payments",
		Long:  "List payments. Landlords see all tenants' payments, tenants see their own.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPayments()
		},
	}
}

func runPayments() error {
	payments, err := newAPIClient().ListPayments()
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(payments)
	}

	return printPaymentTable(payments)
}

func newPayCmd() *cobra.Command {
	var amount float64
	var phone string

	cmd := &cobra.Command{
		Use:   "pay <property-id>",
		Short: "Pay rent over M-Pesa",
		Long:  "Sends an M-Pesa STK push to your phone for the given property's rent (tenant only).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid property ID %q", args[0])
			}
			return runPay(id, amount, phone)
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount in KES (default: the property's rent)")
	cmd.Flags().StringVar(&phone, "phone", "", "M-Pesa phone number (required)")

	return cmd
}

func runPay(propertyID int64, amount float64, phone string) error {
	// Checked before anything leaves the machine.
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("phone number is required (use --phone)")
	}

	resp, err := newAPIClient().Pay(propertyID, amount, phone)
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(resp)
	}

	fmt.Printf("✓ %s\n", resp.Message)
	fmt.Printf("  Payment #%d for KES %s (%s)\n",
		resp.Payment.ID, formatKES(resp.Payment.Amount), resp.Payment.Status)
	return nil
}

func newMarkPaymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-payment <id> <status>",
		Short: "Set a payment's status",
		Long:  "Manually mark a payment as pending, completed or failed (landlord only).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid payment ID %q", args[0])
			}
			if !payment.ValidStatus(args[1]) {
				return fmt.Errorf("invalid status %q (must be pending, completed or failed)", args[1])
			}
			return runMarkPayment(id, args[1])
		},
	}
}

func runMarkPayment(id int64, status string) error {
	p, err := newAPIClient().UpdatePaymentStatus(id, status)
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(p)
	}

	fmt.Printf("✓ Payment #%d marked %s.\n", p.ID, p.Status)
	return nil
}
