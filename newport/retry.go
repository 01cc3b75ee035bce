package newport

import (
	"log"

	"github.com/omc-lab/polctl/comm"
)

// maxAttempts bounds the immediate-retry policy for writes and queries.
// Re-sending an ASCII command is safe on this controller family.
const maxAttempts = 3

// writeWithRetry issues cmd, re-issuing the identical string on transport
// failure up to maxAttempts total attempts with no backoff.  After the last
// failure it returns ErrTransport; the caller proceeds to its next command
// rather than aborting the session.
func writeWithRetry(t comm.Transport, device, cmd string) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = t.Write(cmd)
		if err == nil {
			return nil
		}
		log.Printf("transport error on device %q while executing command %q (attempt %d): %v",
			device, cmd, attempt, err)
	}
	log.Printf("%d attempts failed on device %q, will continue with next command", maxAttempts, device)
	return ErrTransport{Device: device, Cmd: cmd, Attempts: maxAttempts, Last: err}
}

// queryWithRetry issues cmd and returns the response, with the same retry
// policy as writeWithRetry.
func queryWithRetry(t comm.Transport, device, cmd string) (string, error) {
	var (
		resp string
		err  error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err = t.Query(cmd)
		if err == nil {
			return resp, nil
		}
		log.Printf("transport error on device %q while executing command %q (attempt %d): %v",
			device, cmd, attempt, err)
	}
	log.Printf("%d attempts failed on device %q, will continue with next command", maxAttempts, device)
	return "", ErrTransport{Device: device, Cmd: cmd, Attempts: maxAttempts, Last: err}
}
