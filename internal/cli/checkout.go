package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/campuseats/campuseats-backend/internal/checkout"
	"github.com/campuseats/campuseats-backend/pkg/apiclient"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

type groupResultOutput struct {
	Vendor    string          `json:"vendorUsername" yaml:"vendor"`
	State     string          `json:"state" yaml:"state"`
	OrderID   int64           `json:"orderId,omitempty" yaml:"order_id,omitempty"`
	Stage     string          `json:"stage" yaml:"stage"`
	Total     decimal.Decimal `json:"groupTotal" yaml:"group_total"`
	Skipped   bool            `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Retryable bool            `json:"retryable,omitempty" yaml:"retryable,omitempty"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type checkoutOutput struct {
	SessionID string              `json:"sessionId" yaml:"session_id"`
	Customer  string              `json:"customer" yaml:"customer"`
	Orders    []groupResultOutput `json:"orders" yaml:"orders"`
	Total     decimal.Decimal     `json:"total" yaml:"total"`
	Cleared   bool                `json:"cleared" yaml:"cleared"`
	Empty     bool                `json:"empty,omitempty" yaml:"empty,omitempty"`
}

func presentCheckout(sessionID, customer string, res checkout.Result) checkoutOutput {
	out := checkoutOutput{
		SessionID: sessionID,
		Customer:  customer,
		Orders:    make([]groupResultOutput, 0, len(res.Outcomes)),
		Total:     res.Total,
		Cleared:   res.Cleared,
		Empty:     res.Empty,
	}
	for _, o := range res.Outcomes {
		g := groupResultOutput{
			Vendor:    o.VendorUsername,
			State:     string(o.State),
			OrderID:   o.OrderID,
			Stage:     o.Stage.String(),
			Total:     o.GroupTotal,
			Skipped:   o.Skipped,
			Retryable: o.Retryable,
		}
		if o.Err != nil {
			g.Error = describeFailure(o.Err)
		}
		out.Orders = append(out.Orders, g)
	}
	return out
}

// describeFailure prefers the server's own error over the stage wrapper.
func describeFailure(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var te *apiclient.TransportError
	if errors.As(err, &te) {
		return te.Error()
	}
	return err.Error()
}

func (c checkoutOutput) placed() int {
	n := 0
	for _, o := range c.Orders {
		if o.State == string(checkout.OutcomeComplete) {
			n++
		}
	}
	return n
}

func (c checkoutOutput) writeText(w io.Writer) error {
	if c.Empty {
		_, err := fmt.Fprintln(w, "Basket is empty; nothing to submit.")
		return err
	}
	for _, o := range c.Orders {
		switch {
		case o.Skipped:
			fmt.Fprintf(w, "%s  already placed as order %d  %s\n", o.Vendor, o.OrderID, money.Format(o.Total))
		case o.State == string(checkout.OutcomeComplete):
			fmt.Fprintf(w, "%s  placed order %d  %s\n", o.Vendor, o.OrderID, money.Format(o.Total))
		case o.OrderID != 0:
			fmt.Fprintf(w, "%s  FAILED at %s, order %d partially written: %s\n", o.Vendor, o.Stage, o.OrderID, o.Error)
		default:
			fmt.Fprintf(w, "%s  FAILED at %s: %s\n", o.Vendor, o.Stage, o.Error)
		}
	}
	fmt.Fprintf(w, "Total: %s\n", money.Format(c.Total))
	if c.Cleared {
		_, err := fmt.Fprintln(w, "All orders placed; basket cleared.")
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d vendor orders placed; run checkout again to retry the rest.\n", c.placed(), len(c.Orders))
	return err
}

// NewCheckoutCommand submits the basket file as one order per vendor.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file        string
		customer    string
		statePath   string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place one order per vendor from the basket file",
		Long: `Consolidate the basket per vendor and submit each group. Groups that
were placed are recorded in the state file and skipped on the next run;
the basket is emptied only once every group is placed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if statePath == "" {
				statePath = file + ".state"
			}
			bf, store, err := openBasket(file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(customer) == "" {
				customer = bf.Customer
			}

			st, err := LoadState(statePath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load checkout state", err)
			}

			client, err := rootOpts.client()
			if err != nil {
				return err
			}
			submitter, err := checkout.NewHTTPSubmitter(client)
			if err != nil {
				return WrapExitError(ExitCommandError, "create submitter", err)
			}
			orchOpts := []checkout.OrchestratorOption{checkout.WithConcurrency(concurrency)}
			if rootOpts.Verbose {
				orchOpts = append(orchOpts, checkout.WithLogger(logger.New(logger.Options{
					ServiceName: "campuseats-cli",
					Level:       logger.ParseLevel("debug"),
					Output:      cmd.ErrOrStderr(),
				})))
			}
			orch, err := checkout.NewOrchestrator(submitter, orchOpts...)
			if err != nil {
				return WrapExitError(ExitCommandError, "create orchestrator", err)
			}
			session, err := checkout.NewSession(store, orch,
				checkout.WithSessionID(st.SessionID),
				checkout.WithCompletedGroups(st.Completed),
			)
			if err != nil {
				return WrapExitError(ExitCommandError, "create checkout session", err)
			}

			out := formatter(rootOpts, cmd)
			out.VerboseLog("checkout session %s against %s", session.ID(), rootOpts.Server)

			res, err := session.Checkout(cmd.Context(), customer)
			if err != nil {
				if pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
					return WrapExitError(ExitCommandError, "checkout", err)
				}
				return WrapExitError(ExitFailure, "checkout", err)
			}

			if res.Cleared {
				bf.SetLines(store.Lines())
				if err := SaveBasketFile(file, bf); err != nil {
					return WrapExitError(ExitCommandError, "save basket", err)
				}
				if err := RemoveState(statePath); err != nil {
					return WrapExitError(ExitCommandError, "remove checkout state", err)
				}
			} else if !res.Empty {
				st.Completed = session.CompletedGroups()
				if err := SaveState(statePath, st); err != nil {
					return WrapExitError(ExitCommandError, "save checkout state", err)
				}
			}

			view := presentCheckout(session.ID(), customer, res)
			if err := out.Render(view, view.writeText); err != nil {
				return err
			}
			if failed := res.Failed(); len(failed) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d vendor orders failed", len(failed), len(res.Outcomes)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", defaultBasketFile, "basket file")
	cmd.Flags().StringVar(&customer, "customer", "", "customer username (defaults to the basket file's customer)")
	cmd.Flags().StringVar(&statePath, "state", "", "checkout state file (defaults to <file>.state)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "vendor orders submitted in parallel")
	return cmd
}
