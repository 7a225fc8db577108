package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"ruuvi-sensor/internal/codec"
	"ruuvi-sensor/internal/ingest"
	"ruuvi-sensor/internal/packet"
)

func newDecodeCmd() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "decode <url|hex>...",
		Short: "Decode ruu.vi URLs or hex manufacturer data",
		Example: `  ruuvi-sensor decode 'https://ruu.vi/#AjwYAMFc'
  ruuvi-sensor decode --encoding cbor 99040512FC5394C37C0004FFFC040CAC364200CDCBB8334C884F`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := codec.Parse(encoding)
			if err != nil {
				return err //nolint:wrapcheck
			}

			return decode(cmd.OutOrStdout(), enc, args, time.Now())
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", string(codec.JSON), "output encoding (json, cbor as hex)")

	return cmd
}

// decode writes one line per argument and fails on the first payload that
// cannot be decoded.
func decode(w io.Writer, enc codec.Encoding, args []string, now time.Time) error {
	for _, arg := range args {
		reading, err := ingest.Decode([]byte(arg))
		if err != nil {
			return fmt.Errorf("decode %q: %w", arg, err)
		}

		p := packet.New(reading, now)
		p.URL = ingest.SourceURL([]byte(arg))

		b, err := enc.Marshal(p)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if enc == codec.CBOR {
			_, err = fmt.Fprintln(w, hex.EncodeToString(b))
		} else {
			_, err = fmt.Fprintln(w, string(b))
		}

		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return nil
}
