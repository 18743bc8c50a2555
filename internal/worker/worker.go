package worker

import (
	"context"
	"sync"

	"github.com/mkrish/go-crime-routes/internal/models"
)

// ProcessFunc handles one incident pulled off the import queue.
type ProcessFunc func(ctx context.Context, inc *models.Incident) error

// Pool fans incident rows out to a fixed number of workers during bulk
// import. Request handling stays synchronous; the pool is only used on the
// import path.
type Pool struct {
	numWorkers int
	incidents  chan *models.Incident
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		incidents:  make(chan *models.Incident, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case inc, ok := <-p.incidents:
			if !ok {
				return
			}
			p.processor(ctx, inc)
		}
	}
}

func (p *Pool) Submit(inc *models.Incident) {
	p.incidents <- inc
}

func (p *Pool) Stop() {
	close(p.incidents)
	p.wg.Wait()
}
