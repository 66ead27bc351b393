package worker

import (
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
)

type Pool struct {
	queue chan model.Job
}

// NewPool creates a pool of notification workers.
func NewPool(store *store.Store, size int) *Pool {
	workerPool := &Pool{
		queue: make(chan model.Job),
	}

	for i := 0; i < size; i++ {
		worker := &NotifyWorker{id: i, store: store}
		go worker.Run(workerPool.queue)
	}
	return workerPool
}

func (p *Pool) Push(jobs model.JobList) {
	for _, job := range jobs {
		p.queue <- job
	}
}
