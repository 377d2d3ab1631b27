// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"io"
	"sync"
)

const stdinChunkSize = 4096

// stdinPump is the single reader of a shared stdin. Steps attach to it for as
// long as they run; input read while no step is attached waits for the next one.
type stdinPump struct {
	src    io.Reader
	chunks chan []byte
}

func newStdinPump(src io.Reader) *stdinPump {
	p := &stdinPump{src: src, chunks: make(chan []byte)}
	go p.run()
	return p
}

func (p *stdinPump) run() {
	defer close(p.chunks)
	for {
		buf := make([]byte, stdinChunkSize)
		n, err := p.src.Read(buf)
		if n > 0 {
			p.chunks <- buf[:n]
		}
		if err != nil {
			return
		}
	}
}

// attach forwards input to w until the returned stop function is called.
// stop blocks until forwarding has ended, so no input is consumed afterwards.
func (p *stdinPump) attach(w io.Writer) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case b, ok := <-p.chunks:
				if !ok {
					return
				}
				if _, err := w.Write(b); err != nil {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// stdinPumps hands out one pump per stdin source.
type stdinPumps struct {
	mu   sync.Mutex
	src  io.Reader
	pump *stdinPump
}

// get returns the pump reading src, starting it on first use.
func (s *stdinPumps) get(src io.Reader) *stdinPump {
	if src == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pump == nil || s.src != src {
		s.src = src
		s.pump = newStdinPump(src)
	}
	return s.pump
}
