package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// stake_smoke signs in against a running server, opens the event stream and
// submits a stake, printing every frame until the attempt settles.
func main() {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	email, password := os.Getenv("SMOKE_EMAIL"), os.Getenv("SMOKE_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SMOKE_EMAIL and SMOKE_PASSWORD must be set")
	}

	body, status := post(base+"/api/v1/auth/signin", "", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	if status != http.StatusOK {
		log.Fatalf("signin: %d %s", status, body)
	}
	token := gjson.GetBytes(body, "token").String()
	log.Printf("signed in as %s", gjson.GetBytes(body, "user.id").String())

	u, err := url.Parse(base)
	if err != nil {
		log.Fatal(err)
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/api/v1/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.Fatalf("read ready: %v", err)
	}
	log.Printf("< %s", msg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(15 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Printf("ws closed: %v", err)
				return
			}
			log.Printf("< %s", msg)
			ev := gjson.ParseBytes(msg)
			if ev.Get("type").String() != "stake_state" {
				continue
			}
			switch ev.Get("data.to").String() {
			case "done", "rejected", "failed":
				return
			}
		}
	}()

	sub := `{"nickname":"smoke","wallet_address":"EQ-smoke","common_nfts":1,"rare_nfts":1,"ultra_rare_nfts":0,"boom_nfts":0}`
	body, status = post(base+"/api/v1/stake", token, sub)
	log.Printf("submit: %d pickaxes=%d warnings=%s", status,
		gjson.GetBytes(body, "rewards.total_pickaxes").Int(),
		gjson.GetBytes(body, "warnings").Raw)

	<-done
	body, status = post(base+"/api/v1/auth/signout", token, "")
	log.Printf("signout: %d %s", status, body)
}

func post(target, token, payload string) ([]byte, int) {
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewBufferString(payload))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s: %v", target, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return b, resp.StatusCode
}
