package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scenario is one kind of request the load test sends
type Scenario struct {
	Name   string
	Method string
	Path   string // %d is replaced by the user id
	Body   func() any
}

// Result contains metrics for a single request
type Result struct {
	Scenario     string
	UserID       int
	StatusCode   int
	ResponseTime time.Duration
	Err          error
}

// Stats aggregates results
type Stats struct {
	mu            sync.Mutex
	Total         int
	Succeeded     int
	Failed        int
	ResponseTimes []time.Duration
	ByStatus      map[int]int
	ByScenario    map[string]int
	ByUser        map[int]int
	Errors        map[string]int
}

func (s *Stats) add(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ByScenario[r.Scenario]++
	s.ByUser[r.UserID]++
	s.ResponseTimes = append(s.ResponseTimes, r.ResponseTime)
	if r.Err != nil {
		s.Failed++
		s.Errors[r.Err.Error()]++
		return
	}
	s.ByStatus[r.StatusCode]++
	// 409 and 422 are expected outcomes under contention, not failures
	if r.StatusCode < 300 || r.StatusCode == http.StatusConflict || r.StatusCode == http.StatusUnprocessableEntity {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 200, "Total number of requests to make")
	userIDsStr := flag.String("u", "1,2,3,4,5", "Comma-separated list of user IDs to distribute load across")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 50, "Delay between requests per worker in milliseconds")
	flag.Parse()

	var userIDs []int
	for _, idStr := range strings.Split(*userIDsStr, ",") {
		var id int
		if _, err := fmt.Sscanf(strings.TrimSpace(idStr), "%d", &id); err == nil && id > 0 {
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) == 0 {
		userIDs = []int{1}
	}

	scenarios := []Scenario{
		{"donation", http.MethodPost, "/users/%d/transactions", func() any {
			return map[string]any{
				"transactionId": uuid.NewString(),
				"type":          "donation",
				"amount":        fmt.Sprintf("%d.00", 100+rand.IntN(900)),
				"description":   "load test donation",
			}
		}},
		{"withdrawal", http.MethodPost, "/users/%d/withdrawals", func() any {
			return map[string]any{
				"amount":         "1000",
				"paymentMethod":  "yoomoney",
				"paymentDetails": map[string]string{"walletNumber": "410011234567890"},
			}
		}},
		{"balance", http.MethodGet, "/users/%d/balance", nil},
		{"stats", http.MethodGet, "/users/%d/stats", nil},
		{"history", http.MethodGet, "/users/%d/transactions?limit=50", nil},
	}

	fmt.Printf("Load testing %s across %d users: %v\n", *baseURL, len(userIDs), userIDs)
	fmt.Printf("Concurrency: %d, requests: %d, delay: %d ms\n", *concurrency, *totalRequests, *delayMs)

	stats := &Stats{
		Total:      *totalRequests,
		ByStatus:   make(map[int]int),
		ByScenario: make(map[string]int),
		ByUser:     make(map[int]int),
		Errors:     make(map[string]int),
	}

	jobs := make(chan struct{}, *totalRequests)
	for range *totalRequests {
		jobs <- struct{}{}
	}
	close(jobs)

	client := &http.Client{Timeout: 10 * time.Second}
	start := time.Now()

	var wg sync.WaitGroup
	for range *concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if *delayMs > 0 {
					time.Sleep(time.Duration(*delayMs) * time.Millisecond)
				}
				userID := userIDs[rand.IntN(len(userIDs))]
				scenario := scenarios[rand.IntN(len(scenarios))]
				stats.add(send(client, *baseURL, userID, scenario))
			}
		}()
	}
	wg.Wait()

	printResults(stats, time.Since(start))
}

func send(client *http.Client, baseURL string, userID int, s Scenario) Result {
	result := Result{Scenario: s.Name, UserID: userID}

	var body bytes.Buffer
	if s.Body != nil {
		if err := json.NewEncoder(&body).Encode(s.Body()); err != nil {
			result.Err = err
			return result
		}
	}

	req, err := http.NewRequest(s.Method, baseURL+fmt.Sprintf(s.Path, userID), &body)
	if err != nil {
		result.Err = err
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "load-"+uuid.NewString())

	begin := time.Now()
	resp, err := client.Do(req)
	result.ResponseTime = time.Since(begin)
	if err != nil {
		result.Err = err
		return result
	}
	_ = resp.Body.Close()
	result.StatusCode = resp.StatusCode
	return result
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[min(len(sorted)-1, len(sorted)*p/100)]
}

func printResults(stats *Stats, elapsed time.Duration) {
	times := slices.Clone(stats.ResponseTimes)
	slices.Sort(times)

	var sum time.Duration
	for _, d := range times {
		sum += d
	}
	var avg time.Duration
	if len(times) > 0 {
		avg = sum / time.Duration(len(times))
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:   %d\n", stats.Total)
	fmt.Printf("Succeeded:        %d\n", stats.Succeeded)
	fmt.Printf("Failed:           %d\n", stats.Failed)
	fmt.Printf("Elapsed:          %.2fs\n", elapsed.Seconds())
	fmt.Printf("Throughput:       %.2f req/s\n", float64(stats.Total)/elapsed.Seconds())

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average: %v  P50: %v  P90: %v  P99: %v  Max: %v\n",
		avg, percentile(times, 50), percentile(times, 90), percentile(times, 99), percentile(times, 100))

	fmt.Println("\n----------------- STATUS CODES -----------------")
	codes := make([]int, 0, len(stats.ByStatus))
	for code := range stats.ByStatus {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Printf("%d: %d\n", code, stats.ByStatus[code])
	}

	fmt.Println("\n----------------- SCENARIOS -----------------")
	for name, count := range stats.ByScenario {
		fmt.Printf("%-12s %d\n", name, count)
	}

	if len(stats.Errors) > 0 {
		fmt.Println("\n----------------- TRANSPORT ERRORS -----------------")
		for msg, count := range stats.Errors {
			fmt.Printf("%-50s %d\n", msg, count)
		}
	}
}
