package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

type node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type edge struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Label    string `json:"label"`
}

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

// Smoke test against a running server: two extraction runs that declared the
// same subject and link must reconciliate to one node pair and one edge.
func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Checking health...")
	if _, ok := sendRequest("GET", "/healthz", nil); !ok {
		fail("health check")
	}

	fmt.Println("2. Reconciliating two runs...")
	payload := graph{
		Nodes: []node{
			{ID: "0:source", Label: "source"},
			{ID: "A:target", Label: "target"},
			{ID: "0:source", Label: "source"},
			{ID: "A:target", Label: "target"},
		},
		Edges: []edge{
			{ID: "(0:source)--[link]->(A:target)", SourceID: "0:source", TargetID: "A:target", Label: "link"},
			{ID: "run2-link", SourceID: "0:source", TargetID: "A:target", Label: "link"},
		},
	}
	body, ok := sendRequest("POST", "/v1/reconciliate", payload)
	if !ok {
		fail("reconciliate")
	}

	var out graph
	if err := json.Unmarshal(body, &out); err != nil {
		fail(fmt.Sprintf("decode response: %v", err))
	}
	if len(out.Nodes) != 2 || len(out.Edges) != 1 {
		fail(fmt.Sprintf("expected 2 nodes and 1 edge, got %d and %d", len(out.Nodes), len(out.Edges)))
	}

	fmt.Println("3. Checking metrics...")
	if _, ok := sendRequest("GET", "/metrics", nil); !ok {
		fail("metrics")
	}

	fmt.Println("Integration Test PASSED")
}

func fail(step string) {
	fmt.Printf("FAILED: %s\n", step)
	os.Exit(1)
}

func sendRequest(method, path string, payload interface{}) ([]byte, bool) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error marshaling payload: %v\n", err)
			return nil, false
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(body))
		return body, false
	}
	return body, true
}
