// Package main - agitator
// Load generator for the render transport: connects many render clients,
// mashes random keys and measures the frames coming back.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"github.com/redhaven/colony/internal/network"
)

// Config for the agitator
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
	ResultsFile    string
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent   int64
	FramesReceived int64
	BytesReceived  int64
	Errors         int64
	Latencies      []time.Duration
	mu             sync.Mutex
}

// Key chords a colonist might hold.
var chords = [][]string{
	{},
	{"up"},
	{"down"},
	{"left"},
	{"right"},
	{"up", "left"},
	{"down", "right"},
	{"interact"},
	{"right", "interact"},
	{"escape"},
	{"confirm"},
}

func main() {
	// Parse flags
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 20, "Number of concurrent render clients")
	interval := flag.Duration("interval", 100*time.Millisecond, "Input interval per client")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	results := flag.String("out", "agitator_results.json", "Where to write the JSON results")
	flag.Parse()

	config := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		ActionInterval: *interval,
		TestDuration:   *duration,
		ResultsFile:    *results,
	}

	fmt.Println("=========================================")
	fmt.Println("AGITATOR - render transport load test")
	fmt.Println("=========================================")
	fmt.Printf("Server: %s\n", config.ServerURL)
	fmt.Printf("Clients: %d\n", config.NumClients)
	fmt.Printf("Interval: %v\n", config.ActionInterval)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Println("=========================================")

	// Setup graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := runStressTest(ctx, config)
	printResults(stats, config)
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup

	fmt.Println("\nStarting clients...")

	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("All %d clients started\n\n", config.NumClients)

	// Progress updates
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent := atomic.LoadInt64(&stats.MessagesSent)
				recv := atomic.LoadInt64(&stats.FramesReceived)
				errs := atomic.LoadInt64(&stats.Errors)
				fmt.Printf("Progress: Sent=%s Frames=%s Errors=%d\n", humanize.Comma(sent), humanize.Comma(recv), errs)
			}
		}
	}()

	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		log.Printf("Client %d: Connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	// Start receiver goroutine
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame network.Frame
			if err := json.Unmarshal(data, &frame); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				continue
			}
			atomic.AddInt64(&stats.FramesReceived, 1)
			atomic.AddInt64(&stats.BytesReceived, int64(len(data)))
		}
	}()

	// Send inputs at configured interval
	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			msg := network.InputMessage{Pressed: chords[rand.Intn(len(chords))]}
			start := time.Now()

			if err := conn.WriteJSON(msg); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}

			latency := time.Since(start)
			atomic.AddInt64(&stats.MessagesSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, latency)
			stats.mu.Unlock()
		}
	}
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("STRESS TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.FramesReceived)
	bytes := atomic.LoadInt64(&stats.BytesReceived)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Inputs Sent:     %s\n", humanize.Comma(sent))
	fmt.Printf("Frames Received: %s (%s)\n", humanize.Comma(recv), humanize.Bytes(uint64(bytes)))
	fmt.Printf("Errors:          %d\n", errs)
	fmt.Printf("Error Rate:      %.2f%%\n", float64(errs)/float64(sent+1)*100)

	// Calculate throughput
	frameRate := float64(recv) / config.TestDuration.Seconds() / float64(max(config.NumClients, 1))
	fmt.Printf("Frames/client/s: %.2f\n", frameRate)

	// Latency stats
	if len(stats.Latencies) > 0 {
		var total time.Duration
		var min, max time.Duration = stats.Latencies[0], stats.Latencies[0]

		for _, l := range stats.Latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}

		avg := total / time.Duration(len(stats.Latencies))

		fmt.Printf("\nWrite latency:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	// Verdict
	fmt.Println("\n-----------------------------------------")
	if errs == 0 && recv > 0 {
		fmt.Println("TEST PASSED: frames kept flowing under load")
	} else if float64(errs)/float64(sent+1) < 0.05 {
		fmt.Println("TEST WARNING: Some errors detected")
	} else {
		fmt.Println("TEST FAILED: High error rate")
	}
	fmt.Println("=========================================")

	// Export results as JSON
	results := map[string]interface{}{
		"inputs_sent":         sent,
		"frames_received":     recv,
		"bytes_received":      bytes,
		"errors":              errs,
		"frames_per_client_s": frameRate,
		"config": map[string]interface{}{
			"clients":  config.NumClients,
			"interval": config.ActionInterval.String(),
			"duration": config.TestDuration.String(),
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile(config.ResultsFile, jsonData, 0644)
	fmt.Println("\nResults saved to " + config.ResultsFile)
}
