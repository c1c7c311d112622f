package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/chzyer/readline"
)

// consolePort is an interactive terminal. Each entered line is delivered with
// a trailing '\n'; replies are printed above the prompt.
type consolePort struct {
	rl *readline.Instance

	mu      sync.Mutex
	pending bytes.Buffer
}

func openConsole(prompt string) (Port, error) {
	if prompt == "" {
		prompt = "pg> "
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &consolePort{rl: rl}, nil
}

func (p *consolePort) Name() string { return "console" }

func (p *consolePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.pending.Len() == 0 {
		p.mu.Unlock()
		line, err := p.rl.Readline()
		p.mu.Lock()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return 0, io.EOF
			}
			continue
		}
		if err != nil {
			return 0, err
		}
		p.pending.WriteString(line)
		p.pending.WriteByte('\n')
	}
	return p.pending.Read(b)
}

func (p *consolePort) Write(b []byte) (int, error) { return p.rl.Stdout().Write(b) }

func (p *consolePort) Close() error { return p.rl.Close() }
