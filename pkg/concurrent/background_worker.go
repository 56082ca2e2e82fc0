package concurrent

import "sync"

type JobI interface{}

type JobFunc[T JobI, G any] func(job T) G

// BackgroundWorker runs jobFunc over submitted jobs on a fixed number of goroutines.
// Results are published on Results() and the channel is closed by Close.
type BackgroundWorker[T JobI, G any] struct {
	workers   int
	msgC      chan T
	resC      chan G
	waitGroup sync.WaitGroup
	jobFunc   JobFunc[T, G]
}

func NewBackgroundWorker[T JobI, G any](workers, buffer int, jobFunc JobFunc[T, G]) *BackgroundWorker[T, G] {
	if workers < 1 {
		workers = 1
	}
	return &BackgroundWorker[T, G]{
		workers: workers,
		msgC:    make(chan T, buffer),
		resC:    make(chan G, buffer),
		jobFunc: jobFunc,
	}
}

func (bw *BackgroundWorker[T, G]) TriggerProcessing(jobData T) {
	bw.msgC <- jobData
}

func (bw *BackgroundWorker[T, G]) Results() <-chan G {
	return bw.resC
}

func (bw *BackgroundWorker[T, G]) Start() {
	bw.waitGroup.Add(bw.workers)
	for i := 0; i < bw.workers; i++ {
		go func() {
			defer bw.waitGroup.Done()
			for jobData := range bw.msgC {
				bw.resC <- bw.jobFunc(jobData)
			}
		}()
	}
}

// Close stops accepting jobs, waits for in-flight ones and closes the results channel.
func (bw *BackgroundWorker[T, G]) Close() {
	close(bw.msgC)
	bw.waitGroup.Wait()
	close(bw.resC)
}

// Run processes every job with the given parallelism and returns the results in completion order.
func Run[T JobI, G any](workers int, jobs []T, jobFunc JobFunc[T, G]) []G {
	bw := NewBackgroundWorker(workers, len(jobs), jobFunc)
	bw.Start()

	go func() {
		for _, job := range jobs {
			bw.TriggerProcessing(job)
		}
		bw.Close()
	}()

	results := make([]G, 0, len(jobs))
	for res := range bw.Results() {
		results = append(results, res)
	}
	return results
}
