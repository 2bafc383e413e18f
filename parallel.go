package credcrypt

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ParallelConfig controls batch processing in EncryptAll and DecryptAll
type ParallelConfig struct {
	// MaxWorkers is the maximum number of worker goroutines
	// If 0, defaults to runtime.NumCPU()
	MaxWorkers int

	// MinItemsForParallel is the minimum batch size to use parallel processing
	// Below this threshold, sequential processing is used
	MinItemsForParallel int
}

// Validate checks if the parallel configuration is valid
func (p *ParallelConfig) Validate() error {
	if p.MaxWorkers < 0 {
		return errors.New("parallel max workers cannot be negative")
	}
	if p.MaxWorkers > 1024 {
		return errors.New("parallel max workers must not exceed 1024")
	}
	if p.MinItemsForParallel < 0 {
		return errors.New("parallel min items threshold cannot be negative")
	}
	return nil
}

// DefaultParallelConfig returns the default batch processing configuration
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers:          runtime.NumCPU(),
		MinItemsForParallel: 4,
	}
}

// BatchError reports which item of a batch failed
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch item %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// EncryptAll encrypts every buffer independently, each with its own IV.
// Results keep the input order.
func (c *Codec) EncryptAll(buffers [][]byte, cfg ParallelConfig) ([][]byte, error) {
	return c.runBatch("encryption", buffers, cfg, c.Encrypt)
}

// DecryptAll decrypts every blob independently. Results keep the input order.
func (c *Codec) DecryptAll(blobs [][]byte, cfg ParallelConfig) ([][]byte, error) {
	return c.runBatch("decryption", blobs, cfg, c.Decrypt)
}

func (c *Codec) runBatch(kind string, items [][]byte, cfg ParallelConfig, fn func([]byte) ([]byte, error)) ([][]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	results := make([][]byte, len(items))
	if len(items) == 0 {
		return results, nil
	}

	// Determine number of workers
	numWorkers := cfg.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// Limit workers to number of items
	if numWorkers > len(items) {
		numWorkers = len(items)
	}

	// Sequential processing for small batches
	if len(items) < cfg.MinItemsForParallel || numWorkers == 1 {
		for i := range items {
			out, err := safeCall(kind, fn, items[i])
			if err != nil {
				return nil, &BatchError{Index: i, Err: err}
			}
			results[i] = out
		}
		return results, nil
	}

	var wg sync.WaitGroup
	jobChan := make(chan int, len(items))
	errChan := make(chan error, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			current := -1
			defer func() {
				if r := recover(); r != nil {
					// Convert panic to error
					err := &BatchError{Index: current, Err: fmt.Errorf("panic in %s worker: %v", kind, r)}
					select {
					case errChan <- err:
					default:
					}
				}
			}()
			for idx := range jobChan {
				current = idx
				out, err := fn(items[idx])
				if err != nil {
					select {
					case errChan <- &BatchError{Index: idx, Err: err}:
					default:
					}
					return
				}
				results[idx] = out
			}
		}()
	}

	for i := range items {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(errChan)

	if err, ok := <-errChan; ok {
		return nil, err
	}
	return results, nil
}

func safeCall(kind string, fn func([]byte) ([]byte, error), item []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic in %s: %v", kind, r)
		}
	}()
	return fn(item)
}
