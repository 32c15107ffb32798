// Seeds a local server with a demo project and a few frames via the RPC
// API. Requires a dev server running with the seed user configured:
//
//	go run scripts/setup-demo-project.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const serverBase = "http://localhost:8080"

type rpcResult struct {
	Result struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
}

type project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Canvas *struct {
		ID string `json:"id"`
	} `json:"canvas"`
}

type frame struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// devLogin signs in the seed user and returns the access token cookie.
func devLogin() (string, error) {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Post(serverBase+"/auth/dev-login", "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("dev login failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}
	if resp.Header.Get("Location") != "/projects" {
		return "", fmt.Errorf("dev login redirected to %s; is the auth provider up?", resp.Header.Get("Location"))
	}

	for _, c := range resp.Cookies() {
		if c.Name == "mino-access-token" {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("no access token cookie in response")
}

func callRPC(token, procedure string, input interface{}, out interface{}) error {
	body, _ := json.Marshal(input)

	req, _ := http.NewRequest("POST", serverBase+"/api/trpc/"+procedure, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed (%d): %s", procedure, resp.StatusCode, string(bodyBytes))
	}

	var envelope rpcResult
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if out != nil {
		return json.Unmarshal(envelope.Result.Data, out)
	}
	return nil
}

func main() {
	fmt.Println("Setting up demo project...")

	token, err := devLogin()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign in: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("  ✓ Signed in as seed user")

	var proj project
	err = callRPC(token, "project.create", map[string]interface{}{
		"name":        "Demo Project",
		"description": "Seeded demo project",
		"tags":        []string{"demo"},
	}, &proj)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create project: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  ✓ Project created: %s\n", proj.ID)

	if proj.Canvas == nil {
		fmt.Fprintln(os.Stderr, "Project came back without a canvas")
		os.Exit(1)
	}

	frames := []map[string]interface{}{
		{"canvasId": proj.Canvas.ID, "url": "http://localhost:3000/", "x": 0, "y": 0, "width": 1280, "height": 800},
		{"canvasId": proj.Canvas.ID, "url": "http://localhost:3000/about", "x": 1400, "y": 0, "width": 1280, "height": 800},
		{"canvasId": proj.Canvas.ID, "url": "http://localhost:3000/pricing", "x": 0, "y": 900, "width": 390, "height": 844},
	}
	for i, input := range frames {
		var f frame
		if err := callRPC(token, "frame.create", input, &f); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create frame %d: %v\n", i+1, err)
			os.Exit(1)
		}
		fmt.Printf("  ✓ Frame %d: %s\n", i+1, f.URL)
	}

	fmt.Println("\n============================================================")
	fmt.Println("DEMO PROJECT READY")
	fmt.Println("============================================================")
	fmt.Printf("\n  Project: %s\n", proj.ID)
	fmt.Printf("  Canvas:  %s\n", proj.Canvas.ID)
	fmt.Printf("  URL:     http://localhost:3000/projects\n")
}
