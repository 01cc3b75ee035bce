/*Package comm provides the communication channel used to reach lab hardware.

A RemoteDevice wraps a TCP or RS-232 connection with the line terminators and
timeout the instrument expects.  Drivers hold a Transport and speak ASCII
through it:

	rd := comm.NewRemoteDevice("192.168.100.14:4001", false, nil, nil)
	err := rd.Open()
	// handle err
	resp, err := rd.Query("1TP?")

The default terminators are carriage returns on both sides, which is what the
ESP controller family uses.
*/
package comm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/tarm/serial"
)

var (
	// ErrNotConnected is generated when Conn is nil and Send or Recv is called.
	ErrNotConnected = errors.New("conn is nil, not connected to remote")

	// ErrNoSerialConf is generated when IsSerial is true and no serial config was given.
	ErrNoSerialConf = errors.New("device is serial but no serial config was provided")

	// ErrTerminatorNotFound is generated when the termination byte is not found in a response.
	ErrTerminatorNotFound = errors.New("termination byte not found")
)

// Transport is a bidirectional channel to one physical instrument.  Write
// sends a command expecting no reply; Query sends a command and returns the
// instrument's reply with the terminator stripped.
type Transport interface {
	Write(cmd string) error
	Query(cmd string) (string, error)
}

// Terminators holds the Rx and Tx termination bytes for a connection.
type Terminators struct {
	Rx byte
	Tx byte
}

// CRTerminators returns the carriage-return pair used by ESP-family controllers.
func CRTerminators() Terminators {
	return Terminators{Rx: '\r', Tx: '\r'}
}

// RemoteDevice has an address and implements Transport over TCP or serial.
//
// It is not safe for concurrent use; callers issuing commands from multiple
// goroutines must serialize access themselves.
type RemoteDevice struct {
	Addr     string
	IsSerial bool
	Timeout  time.Duration
	Terms    Terminators
	SerCfg   *serial.Config
	Conn     io.ReadWriteCloser
}

// NewRemoteDevice creates a new RemoteDevice instance.  terms may be nil, in
// which case carriage returns are used on both sides.  serCfg may be nil if
// the device is not serial.
func NewRemoteDevice(addr string, useSerial bool, terms *Terminators, serCfg *serial.Config) RemoteDevice {
	if terms == nil {
		t := CRTerminators()
		terms = &t
	}
	return RemoteDevice{
		Addr:     addr,
		IsSerial: useSerial,
		Timeout:  3 * time.Second,
		Terms:    *terms,
		SerCfg:   serCfg}
}

// Open the connection, setting the Conn variable.  Connection thrashing upsets
// some devices, so dialing is retried with an exponential backoff.
func (rd *RemoteDevice) Open() error {
	wasTimeout := false
	op := func() error {
		err := rd.open()
		if err != nil {
			errS := strings.ToLower(err.Error())
			if strings.Contains(errS, "refused") {
				return err
			}
			wasTimeout = true
			return nil
		}
		return nil
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock})
	if err == nil && !wasTimeout {
		return nil
	}
	if wasTimeout {
		return fmt.Errorf("connection timeout to %s", rd.Addr)
	}
	return err
}

func (rd *RemoteDevice) open() error {
	var (
		conn io.ReadWriteCloser
		err  error
	)
	if rd.IsSerial {
		if rd.SerCfg == nil {
			return ErrNoSerialConf
		}
		conn, err = serial.OpenPort(rd.SerCfg)
	} else {
		conn, err = TCPSetup(rd.Addr, rd.Timeout)
	}
	if err != nil {
		return err
	}
	rd.Conn = conn
	return nil
}

// Close the connection, nil-ing the Conn variable.
func (rd *RemoteDevice) Close() error {
	if rd.Conn == nil {
		return nil
	}
	err := rd.Conn.Close()
	if err == nil {
		rd.Conn = nil
	}
	return err
}

// refreshDeadline pushes the read/write deadline forward on TCP connections
// so a long session does not die at the first dial deadline.
func (rd *RemoteDevice) refreshDeadline() {
	if conn, ok := rd.Conn.(net.Conn); ok && rd.Timeout > 0 {
		deadline := time.Now().Add(rd.Timeout)
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}
}

// Send writes data to the remote with the Tx terminator appended.
func (rd *RemoteDevice) Send(b []byte) error {
	if rd.Conn == nil {
		return ErrNotConnected
	}
	rd.refreshDeadline()
	b = append(b, rd.Terms.Tx)
	_, err := rd.Conn.Write(b)
	return err
}

// Recv receives data from the remote and strips the Rx terminator.
func (rd *RemoteDevice) Recv() ([]byte, error) {
	if rd.Conn == nil {
		return nil, ErrNotConnected
	}
	term := rd.Terms.Rx
	buf, err := bufio.NewReader(rd.Conn).ReadBytes(term)
	if err != nil {
		return []byte{}, err
	}
	if bytes.HasSuffix(buf, []byte{term}) {
		idx := bytes.IndexByte(buf, term)
		return buf[:idx], nil
	}
	return buf, ErrTerminatorNotFound
}

// SendRecv sends a buffer after appending the Tx terminator, then returns the
// response with the Rx terminator stripped.
func (rd *RemoteDevice) SendRecv(b []byte) ([]byte, error) {
	err := rd.Send(b)
	if err != nil {
		return []byte{}, err
	}
	return rd.Recv()
}

// Write implements Transport.
func (rd *RemoteDevice) Write(cmd string) error {
	return rd.Send([]byte(cmd))
}

// Query implements Transport.
func (rd *RemoteDevice) Query(cmd string) (string, error) {
	resp, err := rd.SendRecv([]byte(cmd))
	return string(resp), err
}

// TCPSetup opens a new TCP connection and sets a timeout on connect, read, and write.
func TCPSetup(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)
	return conn, nil
}
