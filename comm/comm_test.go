package comm_test

import (
	"io"
	"log"
	"net"
	"testing"

	"github.com/omc-lab/polctl/comm"
)

func tcpEchoServer(t *testing.T) string {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal("could not listen, test aborted:", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			log.Println("new conn accepted")
			go func() { io.Copy(conn, conn) }() // use goroutines to handle multiple connections
		}
	}()
	return ln.Addr().String()
}

func TestQueryRoundTripsWithCRTerminators(t *testing.T) {
	addr := tcpEchoServer(t)
	rd := comm.NewRemoteDevice(addr, false, nil, nil)
	err := rd.Open()
	if err != nil {
		t.Fatal("could not open connection:", err)
	}
	defer rd.Close()
	resp, err := rd.Query("1TP?")
	if err != nil {
		t.Fatal("query errored:", err)
	}
	if resp != "1TP?" {
		t.Errorf("expected the echo with terminator stripped, got %q", resp)
	}
}

func TestWriteBeforeOpenErrors(t *testing.T) {
	rd := comm.NewRemoteDevice("localhost:1", false, nil, nil)
	err := rd.Write("1VA4")
	if err != comm.ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	addr := tcpEchoServer(t)
	rd := comm.NewRemoteDevice(addr, false, nil, nil)
	err := rd.Open()
	if err != nil {
		t.Fatal("could not open connection:", err)
	}
	if err := rd.Close(); err != nil {
		t.Error("first close errored:", err)
	}
	if err := rd.Close(); err != nil {
		t.Error("second close errored:", err)
	}
}

func TestSerialWithoutConfigErrors(t *testing.T) {
	rd := comm.NewRemoteDevice("/dev/ttyS0", true, nil, nil)
	err := rd.Open()
	if err == nil {
		t.Error("expected an error opening a serial device with no config")
	}
}
