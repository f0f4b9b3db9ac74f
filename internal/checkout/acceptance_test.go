package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cucumber/godog"

	"github.com/campuseats/campuseats-backend/internal/basket"
	"github.com/campuseats/campuseats-backend/internal/checkout"
	"github.com/campuseats/campuseats-backend/pkg/enums"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

type fakeServer struct {
	mu       sync.Mutex
	missing  map[string]bool
	placed   map[string]string
	sequence int64
}

func (f *fakeServer) SubmitOrder(_ context.Context, sub checkout.OrderSubmission, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[sub.VendorIdentifier] {
		return 0, &checkout.StageError{
			Stage: enums.SubmissionStageVendorResolution,
			Err:   fmt.Errorf("vendor %q not found", sub.VendorIdentifier),
		}
	}
	f.sequence++
	f.placed[sub.VendorIdentifier] = money.Format(sub.TotalPrice)
	return f.sequence, nil
}

type basketFeature struct {
	store  *basket.Store
	server *fakeServer
	result checkout.Result
}

func (b *basketFeature) reset() {
	b.store = basket.NewStore()
	b.server = &fakeServer{missing: map[string]bool{}, placed: map[string]string{}}
	b.result = checkout.Result{}
}

func (b *basketFeature) anEmptyBasket() error {
	if b.store.Len() != 0 {
		return errors.New("basket is not empty")
	}
	return nil
}

func (b *basketFeature) vendorDoesNotExist(vendor string) error {
	b.server.missing[vendor] = true
	return nil
}

func (b *basketFeature) iAdd(qty int, item, vendor, price string) error {
	_, err := b.store.Add(basket.AddInput{ItemName: item, VendorUsername: vendor, UnitPrice: money.MustParse(price), Quantity: qty})
	return err
}

func (b *basketFeature) basketHasLines(n int) error {
	if got := b.store.Len(); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (b *basketFeature) lineHasQuantity(item string, qty int) error {
	for _, l := range b.store.Lines() {
		if l.ItemName == item {
			if l.Quantity != qty {
				return fmt.Errorf("expected quantity %d, got %d", qty, l.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("no line %q", item)
}

func (b *basketFeature) consolidationYieldsGroups(n int) error {
	if got := len(checkout.Consolidate(b.store.Lines())); got != n {
		return fmt.Errorf("expected %d groups, got %d", n, got)
	}
	return nil
}

func (b *basketFeature) groupHasLinesTotalling(vendor string, n int, total string) error {
	for _, g := range checkout.Consolidate(b.store.Lines()) {
		if g.VendorUsername != vendor {
			continue
		}
		if len(g.Lines) != n {
			return fmt.Errorf("expected %d lines, got %d", n, len(g.Lines))
		}
		if got := money.Format(g.GroupTotal); got != total {
			return fmt.Errorf("expected total %s, got %s", total, got)
		}
		return nil
	}
	return fmt.Errorf("no group %q", vendor)
}

func (b *basketFeature) basketTotalEqualsGroupSum() error {
	groups := checkout.Consolidate(b.store.Lines())
	if !b.store.Total().Equal(checkout.GrandTotal(groups)) {
		return fmt.Errorf("basket total %s differs from group sum %s", b.store.Total(), checkout.GrandTotal(groups))
	}
	return nil
}

func (b *basketFeature) iCheckOutAs(customer string) error {
	orch, err := checkout.NewOrchestrator(b.server)
	if err != nil {
		return err
	}
	session, err := checkout.NewSession(b.store, orch)
	if err != nil {
		return err
	}
	b.result, err = session.Checkout(context.Background(), customer)
	return err
}

func (b *basketFeature) outcomeFor(vendor string) (checkout.GroupOutcome, error) {
	for _, o := range b.result.Outcomes {
		if o.VendorUsername == vendor {
			return o, nil
		}
	}
	return checkout.GroupOutcome{}, fmt.Errorf("no outcome for %q", vendor)
}

func (b *basketFeature) groupIsComplete(vendor string) error {
	o, err := b.outcomeFor(vendor)
	if err != nil {
		return err
	}
	if !o.Complete() {
		return fmt.Errorf("group %q is %s: %v", vendor, o.State, o.Err)
	}
	return nil
}

func (b *basketFeature) groupFailedAtStage(vendor, stage string) error {
	o, err := b.outcomeFor(vendor)
	if err != nil {
		return err
	}
	if o.State != checkout.OutcomeFailed || o.Stage.String() != stage {
		return fmt.Errorf("group %q is %s at %s", vendor, o.State, o.Stage)
	}
	return nil
}

func (b *basketFeature) orderPlacedWithTotal(vendor, total string) error {
	if got := b.server.placed[vendor]; got != total {
		return fmt.Errorf("expected %s placed with %s, got %q", vendor, total, got)
	}
	return nil
}

func (b *basketFeature) basketIsEmpty() error {
	return b.basketHasLines(0)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	bf := &basketFeature{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		bf.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty basket$`, bf.anEmptyBasket)
	ctx.Step(`^the vendor "([^"]*)" does not exist$`, bf.vendorDoesNotExist)
	ctx.Step(`^I add (\d+) of "([^"]*)" from "([^"]*)" at (\d+\.\d{2})$`, bf.iAdd)
	ctx.Step(`^I check out as "([^"]*)"$`, bf.iCheckOutAs)

	ctx.Step(`^the basket has (\d+) lines?$`, bf.basketHasLines)
	ctx.Step(`^the line "([^"]*)" has quantity (\d+)$`, bf.lineHasQuantity)
	ctx.Step(`^consolidation yields (\d+) vendor groups$`, bf.consolidationYieldsGroups)
	ctx.Step(`^group "([^"]*)" has (\d+) lines totalling (\d+\.\d{2})$`, bf.groupHasLinesTotalling)
	ctx.Step(`^the basket total equals the sum of group totals$`, bf.basketTotalEqualsGroupSum)
	ctx.Step(`^the group "([^"]*)" is COMPLETE$`, bf.groupIsComplete)
	ctx.Step(`^the group "([^"]*)" is FAILED at stage "([^"]*)"$`, bf.groupFailedAtStage)
	ctx.Step(`^an order for "([^"]*)" was placed with total (\d+\.\d{2})$`, bf.orderPlacedWithTotal)
	ctx.Step(`^the basket is empty$`, bf.basketIsEmpty)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/basket.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
