package main

import (
	"log"
	"os"
	"sort"
	"strconv"
	"sync"
)

// thisMany bounds how many individual messages each aggregator keeps.
const thisMany = 3

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

// errAgg counts messages, keeps the first few verbatim and buckets the rest
// by message so a summary can show the most common reasons.
type errAgg struct {
	mu      sync.Mutex
	limit   int
	count   int
	first   []string
	buckets map[string]int
}

func newErrAgg(limit int) *errAgg {
	return &errAgg{limit: limit, buckets: make(map[string]int)}
}

func (a *errAgg) add(msg string) {
	a.mu.Lock()
	a.buckets[msg]++
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}

// bucketCount is one message with its number of occurrences.
type bucketCount struct {
	msg   string
	count int
}

// top returns up to n buckets, most frequent first; ties sort by message.
func (a *errAgg) top(n int) []bucketCount {
	a.mu.Lock()
	out := make([]bucketCount, 0, len(a.buckets))
	for m, c := range a.buckets {
		out = append(out, bucketCount{msg: m, count: c})
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].msg < out[j].msg
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// logFirst prints the retained messages under title.
func (a *errAgg) logFirst(title string) {
	if a.count == 0 {
		return
	}
	log.Printf("%s: %d (showing first %d)", title, a.count, len(a.first))
	for i, s := range a.first {
		log.Printf("  #%03d: %s", i+1, s)
	}
}

// logTop prints the most common messages under title.
func (a *errAgg) logTop(title string, n int) {
	if a.count == 0 {
		return
	}
	log.Printf("%s: %d", title, a.count)
	for _, b := range a.top(n) {
		log.Printf("  %6d  %s", b.count, b.msg)
	}
}
