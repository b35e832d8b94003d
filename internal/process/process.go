package process

import (
	"context"

	"github.com/tauraamui/framegrab/pkg/log"
)

// Process runs work in the background until it is stopped.
type Process interface {
	Start()
	Stop()
	Wait()
}

type Settings struct {
	WaitForShutdownMsg string
	// Process starts the work and returns channels which are closed once
	// that work has fully wound down after ctx is cancelled.
	Process func(context.Context) []chan struct{}
}

func New(settings Settings) Process {
	return &process{
		waitForShutdownMsg: settings.WaitForShutdownMsg,
		process:            settings.Process,
	}
}

type process struct {
	process            func(context.Context) []chan struct{}
	waitForShutdownMsg string
	canceller          context.CancelFunc
	signals            []chan struct{}
}

func (p *process) logShutdown() {
	if len(p.waitForShutdownMsg) > 0 {
		log.Info(p.waitForShutdownMsg)
	}
}

func (p *process) Start() {
	ctx, canceller := context.WithCancel(context.Background())
	p.canceller = canceller
	p.signals = append(p.signals, p.process(ctx)...)
}

func (p *process) Stop() {
	p.logShutdown()
	if p.canceller != nil {
		p.canceller()
	}
}

func (p *process) Wait() {
	for _, sig := range p.signals {
		<-sig
	}
}
