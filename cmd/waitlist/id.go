package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haukened/waitlist/internal/resourceid"
)

func newIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Mint and convert resource ids (uses WAITLIST_ID_SECRET)",
	}
	cmd.PersistentFlags().String("prefix", "", "resource prefix (defaults to WAITLIST_ID_PREFIX)")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Mint a new id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				codec, prefix, err := codecFor(cmd)
				if err != nil {
					return err
				}
				id, err := codec.NewID(prefix)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "encode <hex16>",
			Short: "Encode 16 raw bytes (32 hex digits) as an external id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				codec, prefix, err := codecFor(cmd)
				if err != nil {
					return err
				}
				raw, err := parseRaw(args[0])
				if err != nil {
					return err
				}
				id, err := codec.Encode(prefix, raw)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode <id>",
			Short: "Decode an external id to its raw bytes (hex)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				codec, prefix, err := codecFor(cmd)
				if err != nil {
					return err
				}
				raw, err := codec.Decode(prefix, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(raw))
				return nil
			},
		},
		&cobra.Command{
			Use:   "inspect <id>",
			Short: "Decode an external id and show its embedded UUIDv7 details",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				codec, prefix, err := codecFor(cmd)
				if err != nil {
					return err
				}
				p, body, err := resourceid.Parse(args[0])
				if err != nil {
					return err
				}
				raw, err := codec.Decode(prefix, args[0])
				if err != nil {
					return err
				}
				u, err := uuid.FromBytes(raw)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "prefix:    %s\n", p)
				fmt.Fprintf(w, "body:      %s\n", body)
				fmt.Fprintf(w, "raw:       %s\n", hex.EncodeToString(raw))
				fmt.Fprintf(w, "uuid:      %s\n", u)
				fmt.Fprintf(w, "version:   %d\n", u.Version())
				if ts, err := resourceid.Timestamp(raw); err == nil {
					fmt.Fprintf(w, "timestamp: %s\n", ts.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
				}
				return nil
			},
		},
	)
	return cmd
}

// codecFor builds a codec from config and resolves the --prefix flag.
func codecFor(cmd *cobra.Command) (*resourceid.Codec, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	codec, err := resourceid.New(cfg.Secret())
	if err != nil {
		return nil, "", err
	}
	prefix, _ := cmd.Flags().GetString("prefix")
	if prefix == "" {
		prefix = cfg.IDPrefix
	}
	return codec, prefix, nil
}

// parseRaw accepts 32 hex digits, optionally in dashed UUID form.
func parseRaw(s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.ReplaceAll(s, "-", ""))
	if err != nil {
		return nil, fmt.Errorf("raw id must be hex: %w", err)
	}
	return raw, nil
}
