package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"restroom-cloud/internal/auth"
)

// fakeDevice simulates the on-site controller: three rooms with cumulative
// use counters that only ever grow, an occasional cleaning, and the same
// status packet shape the real device reports.
type fakeDevice struct {
	deviceID string

	mu          sync.Mutex
	rooms       []roomState
	lastCleanMs int64
	cleaning    bool
}

type roomState struct {
	id         int
	state      string
	useCount   int64
	totalUseMs int64
	busyUntil  time.Time
}

func main() {
	addr := getenvDefault("FAKE_DEVICE_ADDR", ":19090")
	ingestURL := getenvDefault("FAKE_DEVICE_INGEST_URL", "")
	ingestSecret := getenvDefault("FAKE_DEVICE_INGEST_SECRET", "")
	pushEvery := getenvIntDefault("FAKE_DEVICE_PUSH_SECONDS", 5)
	roomCount := getenvIntDefault("FAKE_DEVICE_ROOMS", 3)

	device := &fakeDevice{deviceID: getenvDefault("FAKE_DEVICE_ID", "restroom-ctl-01")}
	for i := 0; i < roomCount; i++ {
		device.rooms = append(device.rooms, roomState{id: i + 1, state: "vacant"})
	}
	device.lastCleanMs = time.Now().Add(-2 * time.Hour).UnixMilli()

	go device.simulate()

	if ingestURL != "" {
		go device.push(ingestURL, ingestSecret, time.Duration(pushEvery)*time.Second)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/restroom/status/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(device.packet())
	})

	log.Printf("fake device server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

// simulate flips rooms between vacant and occupied and cleans occasionally.
func (d *fakeDevice) simulate() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for now := range ticker.C {
		d.mu.Lock()
		for i := range d.rooms {
			room := &d.rooms[i]
			switch room.state {
			case "occupied":
				if now.After(room.busyUntil) {
					room.state = "vacant"
				} else {
					room.totalUseMs += 1000
				}
			case "vacant":
				if rand.Float64() < 0.05 {
					room.state = "occupied"
					room.useCount++
					room.busyUntil = now.Add(time.Duration(60+rand.Intn(300)) * time.Second)
				}
			}
		}
		if rand.Float64() < 0.0005 {
			d.cleaning = true
		}
		if d.cleaning && rand.Float64() < 0.01 {
			d.cleaning = false
			d.lastCleanMs = now.UnixMilli()
		}
		d.mu.Unlock()
	}
}

func (d *fakeDevice) packet() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()

	rooms := make([]map[string]any, 0, len(d.rooms))
	for _, room := range d.rooms {
		state := room.state
		if d.cleaning {
			state = "cleaning"
		}
		rooms = append(rooms, map[string]any{
			"room_id":      room.id,
			"state":        state,
			"use_count":    room.useCount,
			"total_use_ms": room.totalUseMs,
		})
	}
	return map[string]any{
		"ok":                true,
		"device_id":         d.deviceID,
		"ts_ms":             time.Now().UnixMilli(),
		"cleaning_required": d.cleaning,
		"last_clean_ts_ms":  d.lastCleanMs,
		"rooms":             rooms,
	}
}

// push POSTs signed status packets to the ingest endpoint.
func (d *fakeDevice) push(url, secret string, interval time.Duration) {
	client := &http.Client{Timeout: 10 * time.Second}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		body, err := json.Marshal(d.packet())
		if err != nil {
			log.Printf("push marshal error: %v", err)
			continue
		}
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			log.Printf("push request error: %v", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			timestamp := fmt.Sprintf("%d", time.Now().Unix())
			req.Header.Set("X-Ingest-Timestamp", timestamp)
			req.Header.Set("X-Ingest-Signature", auth.ComputeIngestSignature([]byte(secret), timestamp, body))
		}
		resp, err := client.Do(req)
		if err != nil {
			log.Printf("push error: %v", err)
			continue
		}
		if resp.StatusCode >= 300 {
			log.Printf("push rejected: %d", resp.StatusCode)
		}
		_ = resp.Body.Close()
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
