package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/icl-rocketry/rnp/pkg/rnp"
)

var pingTarget string

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Send a NETMAN PING_REQ to a node over TCP, impersonating the debug host",
	RunE:  runPing,
}

func init() {
	pingCmd.Flags().StringVar(&pingTarget, "target", "", "host:port of the node's TCP interface")
	pingCmd.MarkFlagRequired("target")
}

func runPing(cmd *cobra.Command, args []string) error {
	conn, err := net.DialTimeout("tcp", pingTarget, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w", pingTarget, err)
	}
	defer conn.Close()

	// Debug impersonation: source=DEBUG, destination=NOADDRESS lets an
	// unaddressed node respond without knowing our address in advance.
	req := rnp.NewBasicDataPacket(rnp.NOSERVICE, rnp.NETMAN, rnp.PING_REQ, rnp.DEBUG, rnp.NOADDRESS, uint32(time.Now().Unix()))
	if err := writeFrame(conn, req.ToSerialized()); err != nil {
		return fmt.Errorf("send ping: %w", err)
	}

	sp, err := readFrame(conn)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	resp, err := rnp.BasicDataFromSerialized(sp)
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	fmt.Printf("PING_RES from address=%d: systime=%d\n", resp.Header.Source, resp.Data)
	return nil
}

func writeFrame(w io.Writer, sp *rnp.SerializedPacket) error {
	out := sp.Serialize(nil)
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(out)))
	if _, err := w.Write(lenBuf); err != nil {
		return err
	}
	_, err := w.Write(out)
	return err
}

func readFrame(r io.Reader) (*rnp.SerializedPacket, error) {
	lenBuf := make([]byte, 2)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint16(lenBuf)
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return rnp.DeserializeSerializedPacket(buf)
}
