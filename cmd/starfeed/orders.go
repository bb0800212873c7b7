package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/starfeed/starfeed/adapters/clock"
	"github.com/starfeed/starfeed/adapters/idgen"
	"github.com/starfeed/starfeed/adapters/payment"
	"github.com/starfeed/starfeed/adapters/sqlite"
	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/config"
	"github.com/starfeed/starfeed/domain/order"
	"github.com/starfeed/starfeed/ports"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect and reconcile payment orders",
	Long: `Inspect and reconcile Starfeed payment orders.

Examples:
  starfeed orders list
  starfeed orders list --status=paid
  starfeed orders credit ord_abc --note="ops ticket 42"
  starfeed orders refund ord_abc --note="chargeback"`,
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders by status",
	RunE:  runOrdersList,
}

var ordersCreditCmd = &cobra.Command{
	Use:   "credit <order-id>",
	Short: "Re-apply the quota credit for a paid order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersCredit,
}

var ordersRefundCmd = &cobra.Command{
	Use:   "refund <order-id>",
	Short: "Mark a paid order refunded",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersRefund,
}

var (
	orderStatus string
	orderNote   string
)

func init() {
	rootCmd.AddCommand(ordersCmd)

	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersCreditCmd)
	ordersCmd.AddCommand(ordersRefundCmd)

	ordersListCmd.Flags().StringVar(&orderStatus, "status", "created", "filter: created, paid, failed or refunded")
	ordersCreditCmd.Flags().StringVar(&orderNote, "note", "", "operator note (required)")
	ordersCreditCmd.MarkFlagRequired("note")
	ordersRefundCmd.Flags().StringVar(&orderNote, "note", "", "operator note (required)")
	ordersRefundCmd.MarkFlagRequired("note")
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	orders, err := sqlite.NewOrderStore(db).ListByStatus(context.Background(), order.Status(orderStatus), 100, 0)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		fmt.Printf("No orders with status %q.\n", orderStatus)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOWNER\tPLAN\tAMOUNT\tSTATUS\tCREATED")
	fmt.Fprintln(w, "--\t-----\t----\t------\t------\t-------")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d %s\t%s\t%s\n",
			o.ID, o.OwnerID, o.PlanID, o.AmountMinor, o.Currency, o.Status,
			o.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	return nil
}

func runOrdersCredit(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := checkoutService()
	if err != nil {
		return err
	}
	defer closeFn()

	o, err := svc.ManualCredit(context.Background(), args[0], orderNote)
	if err != nil {
		return fmt.Errorf("manual credit: %w", err)
	}

	fmt.Printf("%s Credited order %s (plan %s, %d calls/month)\n", checkMark, o.ID, o.PlanID, o.QuotaGranted)
	return nil
}

func runOrdersRefund(cmd *cobra.Command, args []string) error {
	if !confirm(fmt.Sprintf("Mark order %s refunded? Quota is not clawed back.", args[0])) {
		fmt.Println("Aborted.")
		return nil
	}

	svc, closeFn, err := checkoutService()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := svc.Refund(context.Background(), args[0], orderNote); err != nil {
		return fmt.Errorf("refund: %w", err)
	}

	fmt.Printf("%s Refunded order %s\n", checkMark, args[0])
	return nil
}

// checkoutService builds a CheckoutService over the configured database
// and gateway for management commands.
func checkoutService() (*app.CheckoutService, func(), error) {
	db, cfg, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}

	gateway, err := paymentGateway(cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	svc := app.NewCheckoutService(app.CheckoutDeps{
		Orders:  sqlite.NewOrderStore(db),
		Keys:    sqlite.NewKeyStore(db),
		Gateway: gateway,
		Clock:   clock.System{},
		IDGen:   idgen.UUID{},
		Logger:  zerolog.Nop(),
	})
	return svc, func() { db.Close() }, nil
}

func paymentGateway(cfg *config.Config) (ports.PaymentGateway, error) {
	return payment.New(payment.Config{
		Provider: cfg.Payment.Provider,
		Razorpay: payment.RazorpayConfig{
			KeyID:     cfg.Payment.KeyID,
			KeySecret: cfg.Payment.KeySecret,
		},
		DummySecret: cfg.Payment.DummySecret,
	})
}
