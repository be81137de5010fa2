package evidence

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ParallelConfig controls parallel record decoding
type ParallelConfig struct {
	// Enabled enables parallel decoding
	Enabled bool

	// MaxWorkers is the maximum number of worker goroutines
	// If 0, defaults to runtime.NumCPU()
	MaxWorkers int

	// MinJobsForParallel is the minimum number of jobs to use parallel decoding
	// Below this threshold, sequential decoding is used
	// Defaults to 4
	MinJobsForParallel int
}

// Validate checks if the parallel configuration is valid
func (p *ParallelConfig) Validate() error {
	if !p.Enabled {
		return nil
	}

	if p.MaxWorkers < 0 {
		return errors.New("parallel max workers cannot be negative")
	}
	if p.MaxWorkers > 1024 {
		return errors.New("parallel max workers must not exceed 1024")
	}
	if p.MinJobsForParallel < 1 {
		return errors.New("parallel min jobs threshold must be at least 1")
	}
	if p.MinJobsForParallel > 1000 {
		return errors.New("parallel min jobs threshold must not exceed 1000")
	}

	return nil
}

// DefaultParallelConfig returns the default parallel decoding configuration
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		Enabled:            true,
		MaxWorkers:         runtime.NumCPU(),
		MinJobsForParallel: 4,
	}
}

// DecodeJob is one serialized record to decode. Record and Err are filled
// in by the decoder; a failed job never affects its siblings.
type DecodeJob struct {
	Name   string
	Data   []byte
	Record *Record
	Err    error
}

// Decoder deserializes batches of independent records sharing a key set and
// a registry
type Decoder struct {
	keys     KeyProvider
	registry *Registry
	parallel ParallelConfig
	opts     []Option
}

// NewDecoder creates a decoder. When keys is a *MultiKeyProvider every key
// is tried in order for each record.
func NewDecoder(keys KeyProvider, registry *Registry, parallel ParallelConfig, opts ...Option) (*Decoder, error) {
	if keys == nil {
		return nil, NewValidationError("keys", nil, "key provider cannot be nil")
	}
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if err := parallel.Validate(); err != nil {
		return nil, &ValidationError{Field: "parallel", Message: err.Error(), Err: err}
	}

	return &Decoder{
		keys:     keys,
		registry: registry,
		parallel: parallel,
		opts:     opts,
	}, nil
}

// Decode deserializes a single record
func (d *Decoder) Decode(name string, data []byte) (*Record, error) {
	opts := append([]Option{WithName(name)}, d.opts...)

	if multi, ok := d.keys.(*MultiKeyProvider); ok {
		return DeserializeWithFallback(multi, d.registry, data, opts...)
	}

	key, err := d.keys.Key()
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	r := NewRecord(key, d.registry, nil, opts...)
	return r, r.Deserialize(data)
}

// DecodeAll decodes every job, filling in Record and Err. It returns an
// error only when ctx is done before all jobs were handed out.
func (d *Decoder) DecodeAll(ctx context.Context, jobs []DecodeJob) error {
	if len(jobs) == 0 {
		return nil
	}

	numWorkers := d.parallel.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	if !d.parallel.Enabled || len(jobs) < d.parallel.MinJobsForParallel {
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				return err
			}
			d.run(&jobs[i])
		}
		return nil
	}

	var wg sync.WaitGroup
	jobChan := make(chan int)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				d.run(&jobs[idx])
			}
		}()
	}

	var err error
send:
	for i := range jobs {
		select {
		case jobChan <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break send
		}
	}
	close(jobChan)
	wg.Wait()

	return err
}

// run decodes one job, converting a panic in a type behavior into an error
func (d *Decoder) run(job *DecodeJob) {
	defer func() {
		if r := recover(); r != nil {
			job.Err = fmt.Errorf("panic in decode worker: %v", r)
		}
	}()
	job.Record, job.Err = d.Decode(job.Name, job.Data)
}
