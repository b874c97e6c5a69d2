package service

import (
	"context"
	"sync"

	"aivaidya-be/pkg/events"
	"aivaidya-be/pkg/llm"
)

const verdictJSON = `{"conditionHypotheses":[{"name":"Viral fever","rationale":"fever"}],"urgency":"soon","recommendedSpeciality":"General Physician","homeCare":"Rest","redFlags":[],"disclaimer":"Not medical advice."}`

type stubProvider struct {
	mu        sync.Mutex
	configErr error
	probeErr  error
	reply     string
	genErr    error
	generates int
}

func (p *stubProvider) Name() string       { return "stub" }
func (p *stubProvider) CheckConfig() error { return p.configErr }

func (p *stubProvider) Probe(ctx context.Context, model string) error {
	return p.probeErr
}

func (p *stubProvider) Generate(ctx context.Context, model string, parts []llm.Part, options ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generates++
	return p.reply, p.genErr
}

func (p *stubProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generates
}

type capturePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *capturePublisher) Publish(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *capturePublisher) all() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.payloads...)
}

type captureEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureEvents) Publish(ctx context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureEvents) all() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}
