package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/campuseats/campuseats-backend/pkg/apiclient"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

type ordersOutput struct {
	Orders []apiclient.Order `json:"orders" yaml:"orders"`
}

func (o ordersOutput) writeText(w io.Writer) error {
	if len(o.Orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders.")
		return err
	}
	for _, order := range o.Orders {
		fmt.Fprintf(w, "#%d  %s  %s  %s  %s\n", order.OrderID, order.OrderDate.UTC().Format("2006-01-02 15:04"), order.Status, order.VendorName, money.Format(order.TotalPrice))
		for _, item := range order.Items {
			fmt.Fprintf(w, "    %s x%d @ %s\n", item.ItemName, item.Quantity, money.Format(item.Price))
		}
	}
	return nil
}

type cancelOutput struct {
	OrderID int64  `json:"orderId" yaml:"order_id"`
	Message string `json:"message" yaml:"message"`
}

// NewOrdersCommand groups order history subcommands.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List or cancel placed orders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list <username>",
		Short: "List a customer's orders, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rootOpts.client()
			if err != nil {
				return err
			}
			orders, err := client.ListOrders(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(exitCodeFor(err), "list orders", err)
			}
			out := ordersOutput{Orders: orders}
			if out.Orders == nil {
				out.Orders = []apiclient.Order{}
			}
			return formatter(rootOpts, cmd).Render(out, out.writeText)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || orderID <= 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid order id %q", args[0]))
			}
			client, err := rootOpts.client()
			if err != nil {
				return err
			}
			msg, err := client.CancelOrder(cmd.Context(), orderID)
			if err != nil {
				return WrapExitError(exitCodeFor(err), "cancel order", err)
			}
			out := cancelOutput{OrderID: orderID, Message: msg}
			return formatter(rootOpts, cmd).Render(out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Order %d: %s\n", out.OrderID, out.Message)
				return err
			})
		},
	})
	return cmd
}

// exitCodeFor separates server rejections from connectivity problems.
func exitCodeFor(err error) int {
	if apiclient.IsTransport(err) {
		return ExitCommandError
	}
	return ExitFailure
}
