package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

const sampleBasket = `customer: alice
lines:
  - item: Burger
    vendor: grill
    price: "7.50"
    quantity: 2
  - item: Fries
    vendor: grill
    price: "2.25"
    quantity: 1
  - item: Latte
    vendor: cafe
    price: "3.40"
    quantity: 1
  - item: Burger
    vendor: grill
    price: "7.5"
    quantity: 1
`

func writeBasket(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "basket.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCLI executes the root command and returns stdout, stderr and the error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
