package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/campuseats/campuseats-backend/internal/basket"
	"github.com/campuseats/campuseats-backend/internal/checkout"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

const defaultBasketFile = "basket.yaml"

type basketLineOutput struct {
	BasketID  string          `json:"basketId" yaml:"basket_id"`
	Item      string          `json:"itemName" yaml:"item"`
	Vendor    string          `json:"vendorUsername" yaml:"vendor"`
	UnitPrice decimal.Decimal `json:"unitPrice" yaml:"unit_price"`
	Quantity  int             `json:"quantity" yaml:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal" yaml:"subtotal"`
}

type vendorGroupOutput struct {
	Vendor string          `json:"vendorUsername" yaml:"vendor"`
	Lines  int             `json:"lines" yaml:"lines"`
	Total  decimal.Decimal `json:"groupTotal" yaml:"group_total"`
}

type basketOutput struct {
	Customer string              `json:"customer,omitempty" yaml:"customer,omitempty"`
	Lines    []basketLineOutput  `json:"lines" yaml:"lines"`
	Count    int                 `json:"count" yaml:"count"`
	Total    decimal.Decimal     `json:"total" yaml:"total"`
	Groups   []vendorGroupOutput `json:"groups" yaml:"groups"`
}

func presentBasket(customer string, lines []basket.Line) basketOutput {
	view := basket.Present(lines)
	out := basketOutput{
		Customer: customer,
		Lines:    make([]basketLineOutput, 0, len(view.Lines)),
		Count:    view.Count,
		Total:    view.Total,
		Groups:   []vendorGroupOutput{},
	}
	for _, l := range view.Lines {
		out.Lines = append(out.Lines, basketLineOutput{
			BasketID:  l.BasketID,
			Item:      l.ItemName,
			Vendor:    l.VendorUsername,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal,
		})
	}
	for _, g := range checkout.Consolidate(lines) {
		out.Groups = append(out.Groups, vendorGroupOutput{Vendor: g.VendorUsername, Lines: len(g.Lines), Total: g.GroupTotal})
	}
	return out
}

func (b basketOutput) writeText(w io.Writer) error {
	if len(b.Lines) == 0 {
		_, err := fmt.Fprintln(w, "Basket is empty.")
		return err
	}
	for _, l := range b.Lines {
		fmt.Fprintf(w, "%s  %s x%d @ %s (%s)  %s\n", l.BasketID, l.Item, l.Quantity, money.Format(l.UnitPrice), l.Vendor, money.Format(l.Subtotal))
	}
	fmt.Fprintln(w, "Vendors:")
	for _, g := range b.Groups {
		fmt.Fprintf(w, "  %s  %d line(s)  %s\n", g.Vendor, g.Lines, money.Format(g.Total))
	}
	_, err := fmt.Fprintf(w, "Items: %d\nTotal: %s\n", b.Count, money.Format(b.Total))
	return err
}

// NewBasketCommand groups the basket file subcommands.
func NewBasketCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "basket",
		Short: "Inspect and edit a basket file",
	}
	cmd.AddCommand(newBasketShowCommand(rootOpts))
	cmd.AddCommand(newBasketAddCommand(rootOpts))
	cmd.AddCommand(newBasketRemoveCommand(rootOpts))
	return cmd
}

func newBasketShowCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show basket lines, vendor groups and the total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bf, store, err := openBasket(file)
			if err != nil {
				return err
			}
			out := presentBasket(bf.Customer, store.Lines())
			return formatter(rootOpts, cmd).Render(out, out.writeText)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", defaultBasketFile, "basket file")
	return cmd
}

func newBasketAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file     string
		item     string
		vendor   string
		price    string
		quantity string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item, merging with an identical line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bf, store, err := openBasket(file)
			if err != nil {
				return err
			}
			unitPrice, err := money.Parse(price)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --price", err)
			}
			qty, err := basket.ParseQuantity(quantity)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --quantity", err)
			}
			if _, err := store.Add(basket.AddInput{
				ItemName:       item,
				VendorUsername: vendor,
				UnitPrice:      unitPrice,
				Quantity:       qty,
			}); err != nil {
				return WrapExitError(ExitCommandError, "add to basket", err)
			}
			bf.SetLines(store.Lines())
			if err := SaveBasketFile(file, bf); err != nil {
				return WrapExitError(ExitCommandError, "save basket", err)
			}
			out := presentBasket(bf.Customer, store.Lines())
			return formatter(rootOpts, cmd).Render(out, out.writeText)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", defaultBasketFile, "basket file")
	cmd.Flags().StringVar(&item, "item", "", "item name")
	cmd.Flags().StringVar(&vendor, "vendor", "", "vendor username")
	cmd.Flags().StringVar(&price, "price", "", "unit price, e.g. 2.50")
	cmd.Flags().StringVar(&quantity, "quantity", "1", "quantity")
	return cmd
}

func newBasketRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "remove <basket-id>",
		Short: "Remove one line by its basket id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bf, store, err := openBasket(file)
			if err != nil {
				return err
			}
			if !store.Remove(args[0]) {
				return NewExitError(ExitCommandError, fmt.Sprintf("no basket line %q", args[0]))
			}
			bf.SetLines(store.Lines())
			if err := SaveBasketFile(file, bf); err != nil {
				return WrapExitError(ExitCommandError, "save basket", err)
			}
			out := presentBasket(bf.Customer, store.Lines())
			return formatter(rootOpts, cmd).Render(out, out.writeText)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", defaultBasketFile, "basket file")
	return cmd
}

func openBasket(path string) (*BasketFile, *basket.Store, error) {
	bf, err := LoadBasketFile(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load basket", err)
	}
	store, err := bf.Store()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load basket", err)
	}
	return bf, store, nil
}

func formatter(rootOpts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
}
