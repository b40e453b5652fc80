// Command quote prices a request against a catalog file without any AWS
// dependencies. The request is read as JSON from a file or stdin.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/yourusername/resale-pricing/internal/catalog"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/models"
	"github.com/yourusername/resale-pricing/internal/quotes"
	"github.com/yourusername/resale-pricing/internal/rates"
)

type options struct {
	catalogPath string
	requestPath string
	logLevel    string
	ratesURL    string
	baseCur     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "quote",
		Short:         "Price a buy, offer, sell, list or payout request against a catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.SetDefault(logger.NewWithWriter(logger.ParseLevel(opts.logLevel), os.Stderr))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.catalogPath, "catalog", "c", os.Getenv("CATALOG_PATH"), "path to the YAML catalog")
	flags.StringVarP(&opts.requestPath, "request", "r", "-", "request JSON file, - for stdin")
	flags.StringVar(&opts.logLevel, "log-level", "WARN", "log level written to stderr")
	flags.StringVar(&opts.ratesURL, "rates-url", "", "price API base URL for crypto estimates")
	flags.StringVar(&opts.baseCur, "base-currency", "SGD", "base currency token prices are quoted in")

	root.AddCommand(
		buySideCmd("buy", "Price accepting a list (price in base currency)", opts, (*quotes.Service).QuoteBuy),
		buySideCmd("offer", "Price a bid (price in the buyer's currency)", opts, (*quotes.Service).QuoteOffer),
		sellSideCmd("sell", "Price accepting an offer (price in base currency)", opts, (*quotes.Service).QuoteSell),
		sellSideCmd("list", "Price an ask (price in the seller's currency)", opts, (*quotes.Service).QuoteList),
		payoutCmd(opts),
	)
	return root
}

func buySideCmd(use, short string, opts *options, price func(*quotes.Service, context.Context, *models.BuyQuoteRequest) (*quotes.Quote, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req models.BuyQuoteRequest
			svc, err := setup(cmd, opts, &req)
			if err != nil {
				return err
			}
			q, err := price(svc, cmd.Context(), &req)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), q)
		},
	}
}

func sellSideCmd(use, short string, opts *options, price func(*quotes.Service, context.Context, *models.SellQuoteRequest) (*quotes.Quote, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req models.SellQuoteRequest
			svc, err := setup(cmd, opts, &req)
			if err != nil {
				return err
			}
			q, err := price(svc, cmd.Context(), &req)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), q)
		},
	}
}

func payoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "payout",
		Short: "Price a payout request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req models.PayoutQuoteRequest
			svc, err := setup(cmd, opts, &req)
			if err != nil {
				return err
			}
			q, err := svc.QuotePayout(cmd.Context(), &req)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), q)
		},
	}
}

// setup loads the catalog, decodes the request into req and builds an
// in-memory quote service.
func setup(cmd *cobra.Command, opts *options, req interface{}) (*quotes.Service, error) {
	if opts.catalogPath == "" {
		return nil, fmt.Errorf("--catalog or CATALOG_PATH is required")
	}
	cat, err := catalog.Load(opts.catalogPath)
	if err != nil {
		return nil, err
	}

	if err := readRequest(cmd.InOrStdin(), opts.requestPath, req); err != nil {
		return nil, err
	}

	var rateSource quotes.RateSource
	if opts.ratesURL != "" {
		rateSource = rates.NewProvider(
			rates.NewHTTPSource(opts.ratesURL, os.Getenv("RATES_API_KEY"), 10*time.Second),
			opts.baseCur,
			time.Minute,
		)
	}
	return quotes.NewService(cat, quotes.NewMemoryStore(), rateSource, 0), nil
}

func readRequest(stdin io.Reader, path string, req interface{}) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	if err := json.Unmarshal(data, req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func write(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
