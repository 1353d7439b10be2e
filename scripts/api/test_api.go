// Minimal end-to-end integration test for the VoiceDAO API.
package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

var baseURL = getenv("API_URL", "http://localhost:8080/v1")

// A fresh keypair per run; the account id is the key's hex form.
var (
	pub, priv, _ = ed25519.GenerateKey(rand.Reader)
	addr         = hex.EncodeToString(pub)
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	nonce := challenge()
	token := verify(nonce)

	joinDAO(token)
	depositTreasury(token)

	id := createProposal(token)
	checkProposal(token, id)
	checkActive(token, id)
	checkStats(token)

	fmt.Println("✓ all endpoints passed")
}

// ----------------------------- auth

func challenge() string {
	var resp struct{ Nonce string }
	doJSON("POST", "/auth/challenge", map[string]any{
		"address": addr,
		"method":  "airgap",
	}, &resp, http.StatusOK)
	if resp.Nonce == "" {
		log.Fatal("challenge: empty nonce")
	}
	return resp.Nonce
}

func verify(nonce string) string {
	sig := ed25519.Sign(priv, []byte(nonce))
	var resp struct{ Token string }
	doJSON("POST", "/auth/verify", map[string]any{
		"address":   addr,
		"publicKey": "ed25519:" + base58.Encode(pub),
		"signature": base58.Encode(sig),
	}, &resp, http.StatusOK)
	if resp.Token == "" {
		log.Fatal("verify: empty token")
	}
	return resp.Token
}

// ----------------------------- membership and treasury

func joinDAO(tok string) {
	doAuth(tok, "POST", "/members/join", nil, nil, http.StatusCreated)
}

func depositTreasury(tok string) {
	doAuth(tok, "POST", "/treasury/deposit", map[string]any{
		"amount": 1000,
		"fund":   "native",
	}, nil, http.StatusCreated)
}

// ----------------------------- proposals

func createProposal(tok string) uint64 {
	var resp struct{ ID uint64 }
	doAuth(tok, "POST", "/proposals", map[string]any{
		"title":       "integration-test " + uuid.NewString(),
		"description": "smoke test proposal",
		"payload": map[string]any{
			"kind": "content",
			"content": map[string]any{
				"action":    "feature",
				"contentId": "smoke-" + uuid.NewString(),
			},
		},
		"deposit": 100,
	}, &resp, http.StatusCreated)
	return resp.ID
}

func checkProposal(tok string, id uint64) {
	var p struct {
		ID     uint64
		Status string
	}
	doAuth(tok, "GET", fmt.Sprintf("/proposals/%d", id), nil, &p, http.StatusOK)
	if p.Status != "active" {
		log.Fatalf("proposal %d: want active got %s", id, p.Status)
	}
}

func checkActive(tok string, want uint64) {
	var rows []struct{ ID uint64 }
	doAuth(tok, "GET", "/proposals/active", nil, &rows, http.StatusOK)
	for _, r := range rows {
		if r.ID == want {
			return
		}
	}
	log.Fatal("active: created proposal not listed")
}

func checkStats(tok string) {
	var stats struct {
		TotalProposals uint64 `json:"totalProposals"`
		TotalMembers   uint64 `json:"totalMembers"`
	}
	doAuth(tok, "GET", "/stats", nil, &stats, http.StatusOK)
	if stats.TotalProposals == 0 || stats.TotalMembers == 0 {
		log.Fatal("stats: empty aggregate")
	}
}

// ----------------------------- helpers

func doAuth(token, method, path string, body, out any, want int) {
	doReq(method, path, token, body, out, want)
}

func doJSON(method, path string, body, out any, want int) {
	doReq(method, path, "", body, out, want)
}

func doReq(method, path, token string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
