// Command bench runs a synthetic workload against the cache, serves Prometheus metrics, and exposes an optional pprof endpoint.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhaowynn/slabcache/cache"
	pmet "github.com/zhaowynn/slabcache/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		capacity  = flag.Int("cap", 100_000, "cache capacity (entries)")
		entrySize = flag.Int("entry", 64, "entry size (bytes)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys  = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "slabcache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build cache ----
	c, err := cache.NewSynced(cache.Options{
		Capacity:  *capacity,
		EntrySize: *entrySize,
		KeySize:   8,
		Metrics:   metrics,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Destroy()

	// ---- Preload half capacity to get a realistic hit-rate ----
	src := make([]byte, *entrySize)
	for i := 0; i < *capacity/2; i++ {
		c.Add(keyOf(uint64(i)), src)
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	entryN := *entrySize

	// ---- Load generation ----
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			dst := make([]byte, entryN)
			val := make([]byte, entryN)
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				k := keyOf(localZipf.Uint64())
				if int(localR.Int31n(100)) < readPctVal {
					c.Lookup(k, dst)
				} else {
					binary.LittleEndian.PutUint64(val, localR.Uint64())
					if c.Add(k, val) == nil {
						// Key already resident: refresh recency instead.
						c.Lookup(k, dst)
					}
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	hits, misses, evicts := c.Stats()
	reads := hits + misses
	hitRate := 0.0
	if reads > 0 {
		hitRate = float64(hits) / float64(reads) * 100
	}

	fmt.Printf("cap=%d entry=%dB workers=%d keys=%d dur=%v seed=%d\n",
		*capacity, entryN, workersN, *keys, elapsed, seedBase)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d\n", hits, misses, hitRate, evicts)
	fmt.Printf("Len()=%d\n", c.Len())
}

// keyOf encodes n as a fixed 8-byte key.
func keyOf(n uint64) []byte {
	k := make([]byte, 8)
	binary.LittleEndian.PutUint64(k, n)
	return k
}
