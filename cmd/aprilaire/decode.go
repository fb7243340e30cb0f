package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/aprilaire/internal/capture"
	"github.com/muurk/aprilaire/internal/protocol"
)

var (
	decodeSession   string
	decodeDirection string
	decodeHex       bool
)

func init() {
	decodeCmd.Flags().StringVar(&decodeSession, "session", "", "Only show records from this capture session ID")
	decodeCmd.Flags().StringVar(&decodeDirection, "direction", "", "Only show records in this direction (in, out)")
	decodeCmd.Flags().BoolVar(&decodeHex, "hex", false, "Also print the raw bytes of every record")
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode <capture.cbor>",
	Short: "Decode a frame capture",
	Long: `Print every message in a capture file written with --capture.

Each record is one socket read or write. Records are parsed the same way the
client parses live traffic, so frames with bad checksums or unknown
attributes are reported as skipped.`,
	Example: `  aprilaire monitor --capture session.cbor
  aprilaire decode session.cbor --direction in`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	filter := capture.Filter{SessionID: decodeSession}
	switch strings.ToLower(decodeDirection) {
	case "":
	case "in":
		d := capture.DirectionIn
		filter.Direction = &d
	case "out":
		d := capture.DirectionOut
		filter.Direction = &d
	default:
		return fmt.Errorf("invalid --direction %q (want in or out)", decodeDirection)
	}

	r, err := capture.OpenFile(args[0], filter)
	if err != nil {
		return err
	}
	defer r.Close()

	return decodeRecords(cmd.OutOrStdout(), r, decodeHex)
}

type recordSource interface {
	Next() (capture.Record, error)
}

func decodeRecords(w io.Writer, r recordSource, withHex bool) error {
	records, messages := 0, 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		records++

		fmt.Fprintf(w, "%s %-3s %s session=%s bytes=%d\n",
			rec.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			rec.Direction, rec.Remote, shortID(rec.SessionID), len(rec.Data))
		if withHex {
			fmt.Fprintf(w, "    % x\n", rec.Data)
		}

		n := 0
		for p := range protocol.Parse(rec.Data) {
			fmt.Fprintf(w, "    %s\n", p)
			n++
		}
		if n == 0 && len(rec.Data) > 0 {
			fmt.Fprintf(w, "    (no valid frames) %s\n", hex.EncodeToString(rec.Data))
		}
		messages += n
	}

	fmt.Fprintf(w, "%d records, %d messages\n", records, messages)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
