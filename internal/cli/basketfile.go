package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/campuseats/campuseats-backend/internal/basket"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

// BasketFile is the on-disk basket. Prices are strings so amounts keep their
// exact decimal form.
type BasketFile struct {
	Customer string           `yaml:"customer,omitempty"`
	Lines    []BasketFileLine `yaml:"lines"`
}

type BasketFileLine struct {
	Item     string `yaml:"item"`
	Vendor   string `yaml:"vendor"`
	Price    string `yaml:"price"`
	Quantity int    `yaml:"quantity"`
	Image    string `yaml:"image,omitempty"`
}

// LoadBasketFile reads a basket file. A missing file is an empty basket.
func LoadBasketFile(path string) (*BasketFile, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &BasketFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read basket %s: %w", path, err)
	}
	var f BasketFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse basket %s: %w", path, err)
	}
	return &f, nil
}

func SaveBasketFile(path string, f *BasketFile) error {
	if f.Lines == nil {
		f.Lines = []BasketFileLine{}
	}
	raw, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode basket: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write basket %s: %w", path, err)
	}
	return nil
}

// Store replays the file's lines into a basket, so duplicates merge exactly
// as they do on an add. Basket ids are assigned in file order.
func (f *BasketFile) Store() (*basket.Store, error) {
	seq := 0
	store := basket.NewStore(basket.WithIDGenerator(func() string {
		seq++
		return "line-" + strconv.Itoa(seq)
	}))
	for i, l := range f.Lines {
		price, err := money.Parse(l.Price)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("lines[%d].price: %v", i, err)).
				WithDetails(map[string]any{"field": fmt.Sprintf("lines[%d].price", i)})
		}
		if _, err := store.Add(basket.AddInput{
			ItemName:       l.Item,
			VendorUsername: l.Vendor,
			UnitPrice:      price,
			Quantity:       l.Quantity,
			ImageRef:       l.Image,
		}); err != nil {
			return nil, fmt.Errorf("lines[%d]: %w", i, err)
		}
	}
	return store, nil
}

// SetLines replaces the file's lines with the basket's current content.
func (f *BasketFile) SetLines(lines []basket.Line) {
	f.Lines = make([]BasketFileLine, 0, len(lines))
	for _, l := range lines {
		f.Lines = append(f.Lines, BasketFileLine{
			Item:     l.ItemName,
			Vendor:   l.VendorUsername,
			Price:    money.Format(l.UnitPrice),
			Quantity: l.Quantity,
			Image:    l.ImageRef,
		})
	}
}
