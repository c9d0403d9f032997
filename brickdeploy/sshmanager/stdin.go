package sshmanager

import (
	"io"
)

const stdinChunkSize = 32 * 1024

// stdinPump is the only reader of a session's local stdin. Commands attach
// to it while they run; input read while no command is attached waits for
// the next one.
type stdinPump struct {
	chunks  chan []byte
	done    chan struct{}
	pending []byte
}

func newStdinPump(r io.Reader) *stdinPump {
	p := &stdinPump{
		chunks: make(chan []byte),
		done:   make(chan struct{}),
	}
	go p.read(r)
	return p
}

func (p *stdinPump) read(r io.Reader) {
	defer close(p.chunks)
	buf := make([]byte, stdinChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case p.chunks <- chunk:
			case <-p.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// attach forwards input to w until stop is closed or stdin is exhausted, and
// closes w when it returns. Input that w did not accept is kept for the next
// command.
func (p *stdinPump) attach(w io.WriteCloser, stop <-chan struct{}) {
	defer w.Close()

	if len(p.pending) > 0 {
		n, err := w.Write(p.pending)
		p.pending = p.pending[n:]
		if err != nil {
			return
		}
	}
	for {
		select {
		case <-stop:
			return
		case chunk, ok := <-p.chunks:
			if !ok {
				return
			}
			n, err := w.Write(chunk)
			if err != nil {
				p.pending = append(p.pending, chunk[n:]...)
				return
			}
		}
	}
}

// close releases a reader blocked on handing over a chunk. A reader blocked
// on the local stdin itself exits on its next read.
func (p *stdinPump) close() {
	close(p.done)
}
