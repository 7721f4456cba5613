package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rippleeffect/charity-service/internal/adapters/checkout"
	"github.com/rippleeffect/charity-service/internal/adapters/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify NAME",
	Short: "Ask the model whether NAME is a registered charity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context(), store.NewMemoryStore(), checkout.Unconfigured{})
		if err != nil {
			return err
		}
		v, err := svc.Verify(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), v)
	},
}

var (
	nearbyCity    string
	nearbyState   string
	nearbyCountry string
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List charities near a place",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd.Context(), store.NewMemoryStore(), checkout.Unconfigured{})
		if err != nil {
			return err
		}
		list, err := svc.FindNearby(cmd.Context(), nearbyCity, nearbyState, nearbyCountry)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), list)
	},
}

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Print the shared charity directory from the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		list, err := st.ListCharities(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), list)
	},
}

func init() {
	nearbyCmd.Flags().StringVar(&nearbyCity, "city", "", "city")
	nearbyCmd.Flags().StringVar(&nearbyState, "state", "", "state or region")
	nearbyCmd.Flags().StringVar(&nearbyCountry, "country", "", "country")
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
